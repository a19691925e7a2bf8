// Package service exposes the HTTP intake surface: it validates transcode
// requests, acknowledges them immediately and hands the job to a background
// launcher without the caller waiting for completion.
package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Launcher triggers a pipeline run for a job id. Implementations must not
// block the caller; any error during the run feeds the record store only.
type Launcher interface {
	Launch(jobID string)
}

type Server struct {
	Logger   *logrus.Logger
	Launcher Launcher

	request
}

type transcodeRequest struct {
	VideoID string `json:"videoId"`
}

type ackBody struct {
	Message string `json:"message"`
}

func (s Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.request = newRequest(rw, r, s.Logger)
	defer s.request.finalize()
	s.serve()
}

func (s *Server) serve() bool {
	switch s.chop() {
	case "", "healthcheck":
		if s.method() != http.MethodGet {
			return s.writeerror("method not allowed", http.StatusMethodNotAllowed, nil)
		}
		return s.writebody("transcode pipeline is running\n", "text/plain; charset=utf-8")
	case "transcode":
		if s.method() != http.MethodPost {
			return s.writeerror("method not allowed", http.StatusMethodNotAllowed, nil)
		}
		return s.transcode()
	}
	return s.writeerror("bad request path", http.StatusNotFound, nil)
}

func (s *Server) transcode() bool {
	var req transcodeRequest
	body := s.Body()
	if !s.ok() {
		return s.writeerror("videoId is required", http.StatusBadRequest, s.err)
	}
	// An unparseable or empty body is the same client error as a missing id.
	err := json.Unmarshal(body, &req)
	if err != nil || strings.TrimSpace(req.VideoID) == "" {
		return s.writeerror("videoId is required", http.StatusBadRequest, err)
	}

	ok := s.writejson(http.StatusAccepted, ackBody{
		Message: fmt.Sprintf("transcoding started for video %s", req.VideoID),
	})
	s.Launcher.Launch(req.VideoID)
	return ok
}

func (s *Server) method() string {
	return s.request.r.Method
}

package service

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultMaxBodyLen = 1024 * 1024

// request is always scoped to a single http request handled by the server
type request struct {
	file, path string

	w http.ResponseWriter
	r *http.Request

	body []byte

	logger      *logrus.Logger
	start       time.Time
	rid         uint64 // random request id
	read, wrote int
	err, logerr error
}

// newRequest initializes request scoped structures, context and counters,
// logging the access line up front.
func newRequest(w http.ResponseWriter, rq *http.Request, logger *logrus.Logger) request {
	r := request{
		path:   rq.URL.Path,
		r:      rq,
		w:      w,
		logger: logger,
		start:  time.Now(),
		rid:    rand.Uint64(),
	}
	r.rid |= 1 << 63 // sacrifice one bit of entropy so they always have the same # digits
	ip := r.r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip, _, _ = net.SplitHostPort(r.r.RemoteAddr)
	}
	r.log(
		"ip", ip,
		"method", r.r.Method,
		"path", r.r.URL.Path,
		"ua", r.r.UserAgent(),
	)
	return r
}

func (r *request) finalize() {
	if r.logerr == nil {
		r.logerr = r.err
	}
	r.log(
		"rx", r.read,
		"tx", r.wrote,
		"ms", time.Since(r.start).Milliseconds(),
		"err", r.logerr,
	)
}

func (s *request) ok() bool {
	return s.err == nil
}

// Body reads the request body at most once and returns it.
func (s *request) Body() []byte {
	if !s.ok() {
		return nil
	}
	if s.body != nil {
		return s.body
	}
	s.body, s.err = io.ReadAll(io.LimitReader(s.r.Body, defaultMaxBodyLen))
	s.read = len(s.body)
	return s.body
}

// errorBody is the wire shape of every client-facing error.
type errorBody struct {
	Error string `json:"error"`
}

func (s *request) writeerror(msg string, code int, err error) bool {
	s.logerr = err
	s.log(
		"msg", msg,
		"code", code,
		"err", err,
	)
	s.writejson(code, errorBody{Error: msg})
	return false
}

func (s *request) writejson(code int, body interface{}) bool {
	data, _ := json.Marshal(body)
	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(code)
	s.wrote, s.err = s.w.Write(data)
	return s.ok()
}

func (s *request) writebody(data string, mimeType string) bool {
	s.w.Header().Set("Content-Type", mimeType)
	s.wrote, s.err = s.w.Write([]byte(data))
	return s.ok()
}

func (s *request) log(kv ...interface{}) {
	fields := logrus.Fields{"rid": s.rid}
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		switch t := v.(type) {
		case fmt.Stringer:
			v = t.String()
		case error:
			if t == nil {
				continue
			}
			v = t.Error()
		}
		fields[fmt.Sprint(kv[i])] = v
	}
	s.logger.WithFields(fields).Info("request")
}

func (s *request) chop() string {
	s.file, s.path = chop(s.path)
	return s.file
}

func chop(p string) (file, next string) {
	p = path.Clean(p)[1:]
	if n := strings.Index(p, "/"); n >= 0 {
		return p[:n], p[n:]
	}
	return p, "/"
}

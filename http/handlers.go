package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Blauerdrache/fnserve/codec"
	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/invoke"
)

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions}

func (e *Engine) InstallHandlers() {
	e.Use(e.StaticLink, e.PrefixLink)

	e.HandleAllMethods("/", e.OK)
	e.HandleAllMethods("/health-check", e.OK)
	e.GET("/stats", e.StatsHandler)
	e.HandleAllMethods("/fn/*path", e.Invoke)
	e.HandleAllMethods("/_/fn/*path", e.Debug, e.Invoke)
	e.HandleAllMethods("/meta/*path", e.Meta)
	e.NoRoute(e.PageNotFound)
	e.NoMethod(e.MethodNotAllowed)
}

func (e *Engine) HandleAllMethods(relativePath string, handlers ...gin.HandlerFunc) {
	for _, method := range methods {
		e.Handle(method, relativePath, handlers...)
	}
}

func (e *Engine) StaticLink(c *gin.Context) {
	if dstPath, ok := e.StaticLinkMap[c.Request.URL.Path]; ok {
		c.Request.URL.Path = dstPath
		e.HandleContext(c)
		c.Abort()
		return
	}
}

func (e *Engine) PrefixLink(c *gin.Context) {
	for oldPrefix, newPrefix := range e.PrefixLinkMap {
		if strings.HasPrefix(c.Request.URL.Path, oldPrefix) {
			c.Request.URL.Path = strings.Replace(c.Request.URL.Path, oldPrefix, newPrefix, 1)
			e.HandleContext(c)
			c.Abort()
			return
		}
	}
}

func (e *Engine) OK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
	c.Abort()
}

func (e *Engine) Debug(c *gin.Context) {
	c.Set("debug", true)
}

// Invoke runs a function named by the first path segment. The request body
// is the event; query parameters become context parameters; allow-listed
// headers feed the env snapshot as presence data.
func (e *Engine) Invoke(c *gin.Context) {
	select {
	case e.semaphore <- struct{}{}:
		defer func() { <-e.semaphore }()
	default:
		c.JSON(http.StatusTooManyRequests, invoke.Response{
			Error: &invoke.ErrorBody{Kind: invoke.KindUnavailable, Message: "too many requests"},
		})
		c.Abort()
		return
	}

	start := time.Now()
	e.stats.Begin()

	req, err := e.buildRequest(c)
	if err != nil {
		e.stats.Failure(start)
		c.JSON(http.StatusBadRequest, invoke.Response{
			Error: &invoke.ErrorBody{Kind: string(codec.KindMalformedInput), Message: "invalid request body"},
		})
		c.Abort()
		return
	}

	resp := e.invoker.Invoke(c.Request.Context(), req)

	c.Header("X-Request-ID", req.Meta.RequestID)
	c.Header("X-Trace-ID", req.Tracing.TraceID)

	if resp.Error != nil {
		e.stats.Failure(start)
		c.JSON(statusForKind(resp.Error.Kind), resp)
		c.Abort()
		return
	}

	e.stats.Success(start)

	// Debug routes carry the context mirror next to the response so the
	// invocation can be inspected without a handler change.
	if c.GetBool("debug") {
		fnCtx := e.invoker.Builder().Build(req.Meta, req.Tracing, req.Parameters, req.Env)
		if mirror, merr := invoke.ContextMirror(fnCtx, "OK"); merr == nil {
			c.JSON(http.StatusOK, gin.H{"response": resp, "context": json.RawMessage(mirror)})
			c.Abort()
			return
		}
	}

	c.JSON(http.StatusOK, resp)
	c.Abort()
}

// Meta answers with the context mirror the invocation would have carried,
// without running a handler. Parameters appear only when non-empty and env
// data only as presence flags.
func (e *Engine) Meta(c *gin.Context) {
	req, err := e.buildRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, invoke.Response{
			Error: &invoke.ErrorBody{Kind: string(codec.KindMalformedInput), Message: "invalid request body"},
		})
		c.Abort()
		return
	}

	fnCtx := e.invoker.Builder().Build(req.Meta, req.Tracing, req.Parameters, req.Env)
	mirror, merr := invoke.ContextMirror(fnCtx, "OK")
	if merr != nil {
		c.JSON(http.StatusInternalServerError, invoke.Response{
			Error: &invoke.ErrorBody{Kind: invoke.KindUnavailable, Message: "failed to render context mirror"},
		})
		c.Abort()
		return
	}

	c.Data(http.StatusOK, "application/json", mirror)
	c.Abort()
}

func (e *Engine) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, e.stats.Snapshot())
	c.Abort()
}

func (e *Engine) PageNotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 page not found")
	c.Abort()
}

func (e *Engine) MethodNotAllowed(c *gin.Context) {
	c.String(http.StatusMethodNotAllowed, "405 method not allowed")
	c.Abort()
}

// buildRequest translates a gin request into an invocation request.
func (e *Engine) buildRequest(c *gin.Context) (*invoke.Request, error) {
	name := strings.Trim(c.Param("path"), "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}

	event := []byte(`{}`)
	if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut || c.Request.Method == http.MethodPatch {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		if len(body) > 0 {
			event = body
		}
	}

	params := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	env := fnctx.Snapshot{}
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			env[k] = v[0]
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	traceID := c.GetHeader("X-Trace-ID")
	if traceID == "" {
		traceID = uuid.NewString()
	}

	req := &invoke.Request{
		Function: name,
		Event:    event,
		Meta:     fnctx.RequestMeta{RequestID: requestID},
		Tracing: fnctx.TracingState{
			TraceID:  traceID,
			SpanID:   uuid.NewString(),
			ParentID: c.GetHeader("X-Parent-Span"),
		},
		Parameters: params,
		Env:        env,
		Deadline:   e.RequestTimeout,
	}

	if ms := c.GetHeader("X-Deadline-Ms"); ms != "" {
		if d, err := time.ParseDuration(ms + "ms"); err == nil && d > 0 && d < req.Deadline {
			req.Deadline = d
		}
	}

	return req, nil
}

// statusForKind maps failure kinds to HTTP statuses. Unknown kinds map to
// 500 so the surface stays well-formed for new kinds.
func statusForKind(kind string) int {
	switch kind {
	case string(codec.KindMalformedInput):
		return http.StatusBadRequest
	case invoke.KindNotFound:
		return http.StatusNotFound
	case string(codec.KindTimeout):
		return http.StatusGatewayTimeout
	case invoke.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

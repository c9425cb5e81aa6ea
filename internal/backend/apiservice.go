package backend

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/shakeplot/shakeplot/internal/common"
	"github.com/shakeplot/shakeplot/internal/core"
	"github.com/shakeplot/shakeplot/internal/graph"
	"github.com/shakeplot/shakeplot/internal/logging"
	"github.com/shakeplot/shakeplot/internal/metrics"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type serviceInfo struct {
	Service    string   `json:"service"`
	MacroTypes []string `json:"macro_types"`
}

// APIService exposes the graph rendering endpoints over HTTP.
type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
	}
}

// NewServer builds the echo instance with the middleware stack shared by
// production and tests: request logging, panic recovery, body size limiting,
// optional per-IP rate limiting and request metrics.
func NewServer(config *core.ServiceConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.JSONSerializer = common.JSONSerializer{}
	e.Validator = &common.GenericEchoValidator{}
	e.HTTPErrorHandler = httpErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())

	// Log every request except health and scrape traffic.
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/" || path == "/health" || path == "/metrics"
		},
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRoutePath: true,
		LogUserAgent: true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logging.Info()
			if v.Error != nil {
				event = logging.Error()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("user_agent", v.UserAgent).
				Err(v.Error).
				Msg("request handled")
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.BodyLimit(config.BodyLimit()))

	if config.RateLimitPerSecond > 0 {
		burst := int(config.RateLimitPerSecond)
		if burst < 1 {
			burst = 1
		}
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(config.RateLimitPerSecond),
			Burst: burst,
		})
		e.Use(middleware.RateLimiter(store))
	}

	return e
}

// SetRoutes registers all endpoints on the server.
func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/", s.infoHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/process/:macro_type", s.processHandler)
}

// infoHandler reports the service name and the macro types it can process.
func (s *APIService) infoHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, serviceInfo{
		Service:    "shakeplot",
		MacroTypes: s.coreService.MacroTypes(),
	})
}

func (s *APIService) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "healthy"})
}

// processHandler accepts one multipart CSV upload under the "file" field and
// responds with the rendered PNG figure. The macro type is checked against
// the closed set before the upload is touched.
func (s *APIService) processHandler(c echo.Context) error {
	macroType := c.Param("macro_type")
	if !s.coreService.IsSupported(macroType) {
		return s.renderError(c, macroType, graph.ErrUnknownMacroType)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: missingUploadMessage(c)})
	}
	if !allowedFile(file.Filename) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid file type. Only CSV files are allowed"})
	}

	data, err := readUpload(file)
	if err != nil {
		logging.Err(err).Str("filename", file.Filename).Msg("failed to read upload")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Failed to read uploaded file"})
	}
	if len(data) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Uploaded file is empty"})
	}
	metrics.UploadSizeBytes.Observe(float64(len(data)))

	image, err := s.coreService.Process(macroType, file.Filename, data)
	if err != nil {
		return s.renderError(c, macroType, err)
	}

	return c.Blob(http.StatusOK, "image/png", image)
}

// renderError maps processing failures onto HTTP statuses: unknown macro
// types and unusable measurement data are the client's fault, everything
// else is ours.
func (s *APIService) renderError(c echo.Context, macroType string, err error) error {
	switch {
	case errors.Is(err, graph.ErrUnknownMacroType):
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("Unknown macro type: %s. Must be one of: %s",
				macroType, strings.Join(s.coreService.MacroTypes(), ", ")),
		})
	case errors.Is(err, graph.ErrEmptyData),
		errors.Is(err, graph.ErrMalformedCSV),
		errors.Is(err, graph.ErrTooFewSamples),
		errors.Is(err, graph.ErrBadTimeColumn):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		logging.Err(err).Str("macro_type", macroType).Msg("graph rendering failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to generate graph"})
	}
}

// httpErrorHandler shapes errors that echo raises outside the handlers,
// such as 404, 405 and body limit rejections, into the same {"error": ...}
// body the handlers produce.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	}
	if code >= http.StatusInternalServerError {
		logging.Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, errorResponse{Error: message})
	}
	if writeErr != nil {
		logging.Err(writeErr).Msg("failed to write error response")
	}
}

// allowedFile reports whether the filename carries the .csv extension.
func allowedFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

// missingUploadMessage distinguishes a request without a file part from one
// whose part carries an empty filename. multipart parsing folds the latter
// into the form values under the field name, which is the shape a browser
// submits for an empty file input.
func missingUploadMessage(c echo.Context) string {
	form, err := c.MultipartForm()
	if err == nil && len(form.Value["file"]) > 0 {
		return "No file selected"
	}
	return "No file provided"
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer src.Close()

	return io.ReadAll(src)
}

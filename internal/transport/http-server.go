package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
)

const (
	tokenHeader = "x-token"
	tokenCookie = "token"
	userKey     = "user"
)

type (
	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		e          *echo.Echo
		general    *service.General
		categories *service.Categories
		logger     *zap.SugaredLogger
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, general *service.General,
	categories *service.Categories, renderer *Renderer, logger *zap.SugaredLogger) *HTTPServer {
	instance := newHTTPServer(general, categories, renderer, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				logger.Infow("Starting HTTP server.", "listen", listen)
				if err := instance.e.Start(listen); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.e.Shutdown(ctx)
		},
	})

	return instance
}

func newHTTPServer(general *service.General, categories *service.Categories, renderer *Renderer,
	logger *zap.SugaredLogger) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	instance := HTTPServer{
		e:          e,
		general:    general,
		categories: categories,
		logger:     logger,
	}

	// HTML forms can only POST, the real verb travels in _method
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))

	e.POST("/auth/register", instance.Register)
	e.POST("/auth/login", instance.Login)
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	categoryG := e.Group("/categories")
	categoryG.GET("", instance.CategoryIndex)
	categoryG.GET("/create", instance.CategoryCreateForm)
	categoryG.POST("", instance.CategoryStore)
	categoryG.GET("/:id", instance.CategoryShow)
	categoryG.GET("/:id/edit", instance.CategoryEditForm)
	categoryG.PUT("/:id", instance.CategoryUpdate)
	categoryG.PATCH("/:id", instance.CategoryUpdate)
	categoryG.DELETE("/:id", instance.CategoryDestroy)

	api := e.Group("/api/v1")

	apiCategoryG := api.Group("/categories")
	apiCategoryG.GET("", instance.APICategoryList)
	apiCategoryG.POST("", instance.APICategoryCreate)
	apiCategoryG.GET("/:id", instance.APICategoryShow)
	apiCategoryG.GET("/:id/links", instance.APICategoryLinks)
	apiCategoryG.PUT("/:id", instance.APICategoryUpdate)
	apiCategoryG.PATCH("/:id", instance.APICategoryUpdate)
	apiCategoryG.DELETE("/:id", instance.APICategoryDelete)

	linkG := api.Group("/links")
	linkG.GET("", instance.LinkGet)
	linkG.POST("", instance.LinkCreate)
	linkG.GET("/:id", instance.LinkShow)
	linkG.PATCH("/:id", instance.LinkUpdate)
	linkG.PUT("/:id", instance.LinkUpdate)
	linkG.DELETE("/:id", instance.LinkDelete)

	tagG := api.Group("/tags")
	tagG.GET("", instance.TagGet)
	tagG.POST("", instance.TagCreate)
	tagG.PATCH("/:id", instance.TagUpdate)
	tagG.DELETE("/:id", instance.TagDelete)
	tagG.GET("/:id/links", instance.TagLinks)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infow("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Path(), "/auth/")
		},
		Handler: func(c echo.Context, reqBody, _ []byte) {
			logger.Debugw("auth request", "path", c.Path(), "body", string(censorBody(reqBody)))
		},
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	e.Use(instance.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}
	e.Renderer = renderer

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	return &instance
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch c.Path() {
		case "/auth/register", "/auth/login", "/ping":
			return next(c)
		}

		token := c.Request().Header.Get(tokenHeader)
		if token == "" {
			if cookie, err := c.Cookie(tokenCookie); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			return c.NoContent(http.StatusUnauthorized)
		}

		user, err := s.general.UserByToken(token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				s.logger.Errorw("find user in db", "error", err)
			}
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set(userKey, user)
		return next(c)
	}
}

func (s *HTTPServer) Register(c echo.Context) error {
	u := models.UserReq{}
	if err := BindAndValidate(c, &u); err != nil {
		return err
	}

	token, err := s.general.Register(u.Email, u.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.TokenResp{Token: token})
}

func (s *HTTPServer) Login(c echo.Context) error {
	u := models.UserReq{}
	if err := BindAndValidate(c, &u); err != nil {
		return err
	}

	token, err := s.general.Login(u.Email, u.Password)
	if err != nil {
		if err == service.ErrLoginUserNotFound || err == service.ErrLoginPasswordDoesNotMatch {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, models.TokenResp{Token: token})
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, ok := c.Get(userKey).(*db.User)
	if !ok || user == nil {
		return nil, errors.New("no user found in context")
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}

// queryOrder reads the orderBy/orderDir pair. The service ignores it unless
// both are present.
func queryOrder(c echo.Context) service.Order {
	return service.Order{
		By:  c.QueryParam("orderBy"),
		Dir: c.QueryParam("orderDir"),
	}
}

func queryPage(c echo.Context) uint64 {
	page, err := strconv.ParseUint(c.QueryParam("page"), 10, 64)
	if err != nil || page == 0 {
		return 1
	}
	return page
}

// mapError turns service errors into HTTP errors. Anything unknown is left
// for echo to report as a 500.
func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	default:
		return err
	}
}

// censorBody masks the password of a JSON request body before it is logged.
func censorBody(body []byte) []byte {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	if _, ok := fields["password"]; !ok {
		return body
	}
	fields["password"] = "$censored"
	censored, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return censored
}

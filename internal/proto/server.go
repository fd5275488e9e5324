package proto

import (
	"context"
	"math"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
)

const tokenKey = "x-token"

type userCtxKey struct{}

type BookmarkerServerImpl struct {
	categories *service.Categories
	general    *service.General
	logger     *zap.SugaredLogger

	server *grpc.Server
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, categories *service.Categories,
	general *service.General, logger *zap.SugaredLogger) *BookmarkerServerImpl {
	instance := newBookmarkerServer(categories, general, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listen := cfg.Host + ":" + cfg.GRPCPort
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return errors.Wrapf(err, "listen %s", listen)
			}
			logger.Infow("Starting GRPC server.", "listen", listen)

			go func() {
				if err := instance.server.Serve(lis); err != nil {
					logger.Errorw("grpc server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			instance.server.GracefulStop()
			return nil
		},
	})

	return instance
}

func newBookmarkerServer(categories *service.Categories, general *service.General,
	logger *zap.SugaredLogger) *BookmarkerServerImpl {
	instance := &BookmarkerServerImpl{
		categories: categories,
		general:    general,
		logger:     logger,
	}
	instance.server = grpc.NewServer(grpc.UnaryInterceptor(instance.authInterceptor))
	RegisterBookmarkerServer(instance.server, instance)
	return instance
}

// authInterceptor resolves the x-token metadata to a user, the same token
// the HTTP API accepts.
func (s *BookmarkerServerImpl) authInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	token := ""
	if values := md.Get(tokenKey); len(values) > 0 {
		token = values[0]
	}

	user, err := s.general.UserByToken(token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			s.logger.Errorw("find user in db", "error", err)
		}
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return handler(context.WithValue(ctx, userCtxKey{}, user), req)
}

// ListCategories accepts {"page", "order_by", "order_dir"} and answers with
// the same envelope as the JSON API.
func (s *BookmarkerServerImpl) ListCategories(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	user := userFromContext(ctx)
	fields := in.GetFields()

	order := service.Order{
		By:  fields["order_by"].GetStringValue(),
		Dir: fields["order_dir"].GetStringValue(),
	}
	page := pageNumber(fields["page"].GetNumberValue())

	categories, p, err := s.categories.List(user.ID, order, page)
	if err != nil {
		return nil, statusError(err)
	}

	data := make([]interface{}, len(categories))
	for i := range categories {
		data[i] = categoryFields(&categories[i])
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"data":         data,
		"current_page": p.CurrentPage,
		"per_page":     p.PerPage,
		"total":        p.Total,
		"last_page":    p.LastPage,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// GetCategory accepts {"id"}.
func (s *BookmarkerServerImpl) GetCategory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	user := userFromContext(ctx)

	id := in.GetFields()["id"].GetNumberValue()
	if id < 1 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	category, err := s.categories.Get(user.ID, uint64(id))
	if err != nil {
		return nil, statusError(err)
	}

	out, err := structpb.NewStruct(categoryFields(category))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// pageNumber turns a JSON number into a 1-based page. Anything below 1,
// including a missing field or NaN, is the first page.
func pageNumber(v float64) uint64 {
	if !(v >= 1) {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return uint64(v)
}

func userFromContext(ctx context.Context) *db.User {
	user, _ := ctx.Value(userCtxKey{}).(*db.User)
	if user == nil {
		return &db.User{}
	}
	return user
}

func categoryFields(c *db.Category) map[string]interface{} {
	fields := map[string]interface{}{
		"id":              c.ID,
		"name":            c.Name,
		"description":     nil,
		"parent_category": nil,
		"created_at":      c.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":      c.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if c.Description != nil {
		fields["description"] = *c.Description
	}
	if c.ParentCategory != nil {
		fields["parent_category"] = *c.ParentCategory
	}
	return fields
}

func statusError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

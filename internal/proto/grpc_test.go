package proto

import (
	"context"
	"fmt"
	"math"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/cache"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
)

type grpcFixture struct {
	client     *BookmarkerClient
	categories *service.Categories
	general    *service.General
}

func newGRPCFixture(t *testing.T) *grpcFixture {
	t.Helper()

	cfg := &config.Config{
		DBDriver:        config.DriverSQLite,
		DBName:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
		PaginationLimit: 10,
		LogLevel:        "error",
		BcryptCost:      bcrypt.MinCost,
	}
	l := zap.NewNop().Sugar()

	conn, err := db.NewGormClient(cfg, l)
	require.NoError(t, err)

	categories := service.NewCategories(conn, cache.NewCategories(l), cfg, l)
	general := service.NewGeneral(conn, categories, cfg, l)
	srv := newBookmarkerServer(categories, general, l)

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = srv.server.Serve(lis)
	}()

	cc, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cc.Close()
		srv.server.Stop()
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &grpcFixture{
		client:     NewBookmarkerClient(cc),
		categories: categories,
		general:    general,
	}
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), tokenKey, token)
}

func newStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestGRPCUnauthenticated(t *testing.T) {
	f := newGRPCFixture(t)

	_, err := f.client.ListCategories(context.Background(), newStruct(t, nil))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = f.client.ListCategories(withToken("nope"), newStruct(t, nil))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPCListCategories(t *testing.T) {
	f := newGRPCFixture(t)

	token, err := f.general.Register("a@example.com", "password123")
	require.NoError(t, err)
	user, err := f.general.UserByToken(token)
	require.NoError(t, err)

	parent, err := f.categories.Create(user.ID, service.CategoryInput{Name: "Alpha"})
	require.NoError(t, err)
	_, err = f.categories.Create(user.ID, service.CategoryInput{Name: "Beta"})
	require.NoError(t, err)
	_, err = f.categories.Create(user.ID, service.CategoryInput{Name: "Child", ParentCategory: &parent.ID})
	require.NoError(t, err)

	out, err := f.client.ListCategories(withToken(token), newStruct(t, map[string]interface{}{
		"order_by":  "name",
		"order_dir": "DESC",
	}))
	require.NoError(t, err)

	resp := out.AsMap()
	assert.Equal(t, float64(2), resp["total"])
	data, ok := resp["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 2)
	assert.Equal(t, "Beta", data[0].(map[string]interface{})["name"])
	assert.Equal(t, "Alpha", data[1].(map[string]interface{})["name"])

	out, err = f.client.ListCategories(withToken(token), newStruct(t, map[string]interface{}{
		"page": -3,
	}))
	require.NoError(t, err)
	resp = out.AsMap()
	assert.Equal(t, float64(1), resp["current_page"])
	assert.Len(t, resp["data"], 2)

	_, err = f.client.ListCategories(withToken(token), newStruct(t, map[string]interface{}{
		"order_by":  "user_id",
		"order_dir": "ASC",
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPageNumber(t *testing.T) {
	assert.Equal(t, uint64(1), pageNumber(0))
	assert.Equal(t, uint64(1), pageNumber(-7))
	assert.Equal(t, uint64(1), pageNumber(0.5))
	assert.Equal(t, uint64(2), pageNumber(2.9))
	assert.Equal(t, uint64(1), pageNumber(math.NaN()))
	assert.Equal(t, uint64(math.MaxInt32), pageNumber(math.Inf(1)))
}

func TestGRPCGetCategory(t *testing.T) {
	f := newGRPCFixture(t)

	owner, err := f.general.Register("owner@example.com", "password123")
	require.NoError(t, err)
	other, err := f.general.Register("other@example.com", "password123")
	require.NoError(t, err)
	user, err := f.general.UserByToken(owner)
	require.NoError(t, err)

	desc := "things"
	c, err := f.categories.Create(user.ID, service.CategoryInput{Name: "Mine", Description: &desc})
	require.NoError(t, err)

	out, err := f.client.GetCategory(withToken(owner), newStruct(t, map[string]interface{}{"id": c.ID}))
	require.NoError(t, err)
	got := out.AsMap()
	assert.Equal(t, "Mine", got["name"])
	assert.Equal(t, "things", got["description"])
	assert.Nil(t, got["parent_category"])

	_, err = f.client.GetCategory(withToken(other), newStruct(t, map[string]interface{}{"id": c.ID}))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = f.client.GetCategory(withToken(owner), newStruct(t, map[string]interface{}{"id": 9999}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.client.GetCategory(withToken(owner), newStruct(t, nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

package rpc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/loot-backend/internal/service"
	"github.com/xtding233/loot-backend/internal/table"
)

var fixtures = map[string]string{
	"catalogs/armory.yaml": `
root:
  items: [Staff]
  branches:
    weapons:
      items: [Bat, Uzi]
modifiers:
  - name: rusty
    prefix: "Rusty "
`,
	"tables/starter.yaml": `
catalog: armory
defaults: {depth: max, luck: 1}
drops:
  - path: weapons
    stack: {min: 2}
`,
}

func newTestConn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range fixtures {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	svc, err := service.New(table.NewLoader(dir), service.Options{CacheSize: 8, MaxTrials: 1000, MaxStack: 100})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := New(svc)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		assert.NoError(t, <-done)
	})
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	if err := conn.Invoke(context.Background(), FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func TestHealth(t *testing.T) {
	conn := newTestConn(t)
	client := grpc_health_v1.NewHealthClient(conn)

	for _, name := range []string{"", ServiceName} {
		resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestRoll(t *testing.T) {
	conn := newTestConn(t)

	out, err := call(t, conn, "Roll", map[string]any{
		"catalog": "armory", "path": "weapons", "depth": 0, "seed": "18446744073709551615",
	})
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", out["seed"])
	item, ok := out["item"].(map[string]any)
	require.True(t, ok, "item missing: %v", out)
	assert.Contains(t, []any{"Bat", "Uzi"}, item["name"])

	again, err := call(t, conn, "Roll", map[string]any{
		"catalog": "armory", "path": "weapons", "depth": 0, "seed": "18446744073709551615",
	})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRollRequestID(t *testing.T) {
	conn := newTestConn(t)
	var header metadata.MD
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "rpc-42")
	req, err := structpb.NewStruct(map[string]any{"catalog": "armory"})
	require.NoError(t, err)

	err = conn.Invoke(ctx, FullMethod("Roll"), req, new(structpb.Struct), grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"rpc-42"}, header.Get("x-request-id"))
}

func TestLoot(t *testing.T) {
	conn := newTestConn(t)

	out, err := call(t, conn, "Loot", map[string]any{
		"catalog": "armory",
		"seed":    "5",
		"drops": []any{
			map[string]any{"path": "weapons", "stack": map[string]any{"min": 2, "max": 2}},
			map[string]any{"depth": 0, "modify": true},
		},
	})
	require.NoError(t, err)
	rewards, ok := out["rewards"].([]any)
	require.True(t, ok)
	require.Len(t, rewards, 3)
	assert.Equal(t, "Rusty Staff", rewards[2].(map[string]any)["name"])
}

func TestLootTable(t *testing.T) {
	conn := newTestConn(t)
	in := map[string]any{"table": "starter", "seed": "7"}

	first, err := call(t, conn, "LootTable", in)
	require.NoError(t, err)
	assert.Equal(t, false, first["cached"])
	assert.Len(t, first["rewards"], 2)

	second, err := call(t, conn, "LootTable", in)
	require.NoError(t, err)
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, first["rewards"], second["rewards"])

	more, err := call(t, conn, "LootTable", map[string]any{"table": "starter", "min": 3, "max": 3})
	require.NoError(t, err)
	assert.Len(t, more["rewards"], 3)
	assert.NotEmpty(t, more["seed"])
}

func TestSimulate(t *testing.T) {
	conn := newTestConn(t)
	out, err := call(t, conn, "Simulate", map[string]any{"table": "starter", "trials": 50, "seed": "1"})
	require.NoError(t, err)
	report, ok := out["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(50), report["trials"])
	assert.Equal(t, float64(0), report["empty_trials"])
}

func TestErrorCodes(t *testing.T) {
	conn := newTestConn(t)
	tests := []struct {
		name   string
		method string
		in     map[string]any
		want   codes.Code
	}{
		{"unknown catalog", "Roll", map[string]any{"catalog": "missing"}, codes.NotFound},
		{"unknown path", "Roll", map[string]any{"catalog": "armory", "path": "weapons/laser"}, codes.NotFound},
		{"unknown field", "Roll", map[string]any{"catalog": "armory", "color": "red"}, codes.InvalidArgument},
		{"bad seed", "Roll", map[string]any{"catalog": "armory", "seed": "x"}, codes.InvalidArgument},
		{"no drops", "Loot", map[string]any{"catalog": "armory"}, codes.InvalidArgument},
		{"bad stack", "LootTable", map[string]any{"table": "starter", "min": 3, "max": 1}, codes.InvalidArgument},
		{"stack over limit", "Loot", map[string]any{"catalog": "armory", "drops": []any{map[string]any{"stack": map[string]any{"max": 101}}}}, codes.InvalidArgument},
		{"huge stack", "LootTable", map[string]any{"table": "starter", "min": 1e12}, codes.InvalidArgument},
		{"unknown table", "LootTable", map[string]any{"table": "missing"}, codes.NotFound},
		{"too many trials", "Simulate", map[string]any{"table": "starter", "trials": 5000}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, conn, tt.method, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestRecoverInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod("Loot")}
	resp, err := recoverInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "internal error", status.Convert(err).Message())

	resp, err = recoverInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestToStatusHidesInternalErrors(t *testing.T) {
	err := toStatus(context.Background(), assert.AnError)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "internal error", status.Convert(err).Message())
	assert.NoError(t, toStatus(context.Background(), nil))
}

package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/loot-backend/internal/service"
)

// LootServer is the server API of loot.v1.LootService.
type LootServer interface {
	Roll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Loot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LootTable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterLootServer registers srv on s.
func RegisterLootServer(s grpc.ServiceRegistrar, srv LootServer) {
	s.RegisterService(&lootServiceDesc, srv)
}

var lootServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LootServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Roll", LootServer.Roll),
		unary("Loot", LootServer.Loot),
		unary("LootTable", LootServer.LootTable),
		unary("Simulate", LootServer.Simulate),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "loot/v1/loot.proto",
}

// FullMethod returns the invoke path of a LootService method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary(name string, call func(LootServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LootServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(LootServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

type handler struct {
	svc *service.Service
}

var _ LootServer = (*handler)(nil)

func (h *handler) Roll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rollRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, badRequest(err))
	}
	seed, err := parseSeed(req.Seed)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	res, err := h.svc.Roll(ctx, service.RollRequest{
		Catalog: req.Catalog, Path: req.Path, Depth: req.Depth, Luck: req.Luck, Seed: seed,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, rollReply{RollResult: res, Seed: formatSeed(res.Seed)})
}

func (h *handler) Loot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req lootRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, badRequest(err))
	}
	seed, err := parseSeed(req.Seed)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	res, err := h.svc.Loot(ctx, service.LootRequest{Catalog: req.Catalog, Drops: req.Drops, Seed: seed})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, lootReply{LootResult: res, Seed: formatSeed(res.Seed)})
}

func (h *handler) LootTable(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req tableRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, badRequest(err))
	}
	seed, err := parseSeed(req.Seed)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	res, err := h.svc.LootTable(ctx, service.TableRequest{Table: req.Table, Overrides: req.overrides(), Seed: seed})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, tableReply{TableResult: res, Seed: formatSeed(res.Seed)})
}

func (h *handler) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req simulateRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, badRequest(err))
	}
	seed, err := parseSeed(req.Seed)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	res, err := h.svc.Simulate(ctx, service.SimulateRequest{Table: req.Table, Trials: req.Trials, Seed: seed})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, simulateReply{SimulateResult: res, Seed: formatSeed(res.Seed)})
}

func reply(ctx context.Context, v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, toStatus(ctx, fmt.Errorf("encode reply: %w", err))
	}
	return out, nil
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", service.ErrInvalidRequest, err)
}

package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/loot-backend/internal/service"
	"github.com/xtding233/loot-backend/internal/table"
)

// Messages travel as google.protobuf.Struct. Seeds are decimal strings on
// the wire since Struct numbers are doubles.

type rollRequest struct {
	Catalog string   `json:"catalog"`
	Path    string   `json:"path"`
	Depth   *int     `json:"depth"`
	Luck    *float64 `json:"luck"`
	Seed    string   `json:"seed"`
}

type lootRequest struct {
	Catalog string             `json:"catalog"`
	Drops   []service.DropSpec `json:"drops"`
	Seed    string             `json:"seed"`
}

type tableRequest struct {
	Table  string   `json:"table"`
	Luck   *float64 `json:"luck"`
	Depth  *int     `json:"depth"`
	Min    *int     `json:"min"`
	Max    *int     `json:"max"`
	Modify *bool    `json:"modify"`
	Seed   string   `json:"seed"`
}

type simulateRequest struct {
	Table  string `json:"table"`
	Trials int    `json:"trials"`
	Seed   string `json:"seed"`
}

type rollReply struct {
	service.RollResult
	Seed string `json:"seed"`
}

type lootReply struct {
	service.LootResult
	Seed string `json:"seed"`
}

type tableReply struct {
	service.TableResult
	Seed string `json:"seed"`
}

type simulateReply struct {
	service.SimulateResult
	Seed string `json:"seed"`
}

func (r tableRequest) overrides() table.Overrides {
	return table.Overrides{Luck: r.Luck, Depth: r.Depth, Min: r.Min, Max: r.Max, Modify: r.Modify}
}

// decode fills out from a Struct, rejecting unknown fields.
func decode(in *structpb.Struct, out any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func parseSeed(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid seed %q", service.ErrInvalidRequest, s)
	}
	return &v, nil
}

func formatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}

package feature

import (
	"context"
	"fmt"
	"strconv"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/storeup/shopkit/pkg/conv"
)

// StatsSource 提供商品级实时统计特征（近 7 日销量、点击率等）。
// recall.Popular 可用它替代静态旗标排序；不可用时调用方降级为旗标排序。
type StatsSource interface {
	// ProductStats 批量获取商品统计特征，返回 map[productID]map[featureName]value。
	// 缺失的商品不出现在结果中。
	ProductStats(ctx context.Context, productIDs []int64, features []string) (map[int64]map[string]float64, error)

	// Name 返回来源名称（用于日志/监控）
	Name() string
}

// FeastStatsSource 是基于官方 Feast Go SDK 的 StatsSource 实现。
//
// 商品统计特征由离线作业物化到 Feast 在线存储，
// 这里按 product_id 实体批量拉取。连接失败或特征缺失时返回错误，
// 由调用方决定降级策略（推荐核心内一律降级，不向上抛）。
type FeastStatsSource struct {
	client  *feastsdk.GrpcClient
	project string

	// EntityName 实体名，默认 "product_id"
	EntityName string
}

// NewFeastStatsSource 连接 Feast Feature Server（gRPC，默认端口 6565）。
func NewFeastStatsSource(host string, port int, project string) (*FeastStatsSource, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastStatsSource{
		client:     client,
		project:    project,
		EntityName: "product_id",
	}, nil
}

func (s *FeastStatsSource) Name() string { return "feast" }

func (s *FeastStatsSource) ProductStats(ctx context.Context, productIDs []int64, features []string) (map[int64]map[string]float64, error) {
	if len(productIDs) == 0 || len(features) == 0 {
		return map[int64]map[string]float64{}, nil
	}

	entityRows := make([]feastsdk.Row, len(productIDs))
	for i, id := range productIDs {
		entityRows[i] = feastsdk.Row{s.EntityName: feastsdk.Int64Val(id)}
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: features,
		Entities: entityRows,
		Project:  s.project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(productIDs) {
		return nil, fmt.Errorf("feast row count mismatch: want %d, got %d", len(productIDs), len(rows))
	}

	result := make(map[int64]map[string]float64, len(productIDs))
	for i, row := range rows {
		values := make(map[string]float64)
		for _, name := range features {
			val, ok := row[name]
			if !ok || val == nil {
				continue
			}
			if fv, ok := conv.ToFloat64(unwrapFeastValue(val)); ok {
				values[name] = fv
			}
		}
		if len(values) > 0 {
			result[productIDs[i]] = values
		}
	}
	return result, nil
}

func (s *FeastStatsSource) Close() error {
	s.client = nil
	return nil
}

// unwrapFeastValue 把 SDK 的 *types.Value 解包为 Go 原生类型。
// 依赖 Value 的 String 表示会丢失类型信息，因此逐个类型分支取值。
func unwrapFeastValue(v interface{}) interface{} {
	type doubleVal interface{ GetDoubleVal() float64 }
	type floatVal interface{ GetFloatVal() float32 }
	type int64Val interface{ GetInt64Val() int64 }
	type int32Val interface{ GetInt32Val() int32 }
	type strVal interface{ GetStringVal() string }

	if dv, ok := v.(doubleVal); ok && dv.GetDoubleVal() != 0 {
		return dv.GetDoubleVal()
	}
	if fv, ok := v.(floatVal); ok && fv.GetFloatVal() != 0 {
		return float64(fv.GetFloatVal())
	}
	if iv, ok := v.(int64Val); ok && iv.GetInt64Val() != 0 {
		return iv.GetInt64Val()
	}
	if iv, ok := v.(int32Val); ok && iv.GetInt32Val() != 0 {
		return int64(iv.GetInt32Val())
	}
	if sv, ok := v.(strVal); ok && sv.GetStringVal() != "" {
		if f, err := strconv.ParseFloat(sv.GetStringVal(), 64); err == nil {
			return f
		}
	}
	return float64(0)
}

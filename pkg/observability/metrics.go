package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used here
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics emits operational counters to CloudWatch. A nil client makes
// every method a no-op, which is what tests and local runs use.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a metrics emitter for the given namespace
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// MemoryFormed counts one formed memory node of the given kind
func (m *Metrics) MemoryFormed(ctx context.Context, kind string) {
	m.count(ctx, "MemoriesFormed", 1, types.Dimension{
		Name:  aws.String("Kind"),
		Value: aws.String(kind),
	})
}

// ContactDeduplicated counts one inbound message attributed to an
// already-known contact
func (m *Metrics) ContactDeduplicated(ctx context.Context) {
	m.count(ctx, "ContactsDeduplicated", 1)
}

// MessageClassified counts one classified message per temperature
func (m *Metrics) MessageClassified(ctx context.Context, temperature string) {
	m.count(ctx, "MessagesClassified", 1, types.Dimension{
		Name:  aws.String("Temperature"),
		Value: aws.String(temperature),
	})
}

func (m *Metrics) count(ctx context.Context, name string, value float64, dimensions ...types.Dimension) {
	if m == nil || m.client == nil {
		return
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("Failed to publish metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}

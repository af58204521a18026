package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpin "ordering/internal/adapters/in/http"
	kafkain "ordering/internal/adapters/in/kafka"
	"ordering/internal/adapters/in/messaging"
	sqsin "ordering/internal/adapters/in/sqs"
	kafkaout "ordering/internal/adapters/out/kafka"
	wire "ordering/internal/adapters/out/messaging"
	"ordering/internal/adapters/out/postgres"
	"ordering/internal/adapters/out/postgres/customerrepo"
	"ordering/internal/adapters/out/postgres/restaurantrepo"
	snsout "ordering/internal/adapters/out/sns"
	"ordering/internal/core/application/sagas"
	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/jobs"
	"ordering/internal/pkg/broker"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// CompositionRoot builds the object graph of the service. Handlers are created
// on demand; the producer and the AWS clients are shared.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	gormDB     *gorm.DB
	sqlxDB     *sqlx.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	producer broker.Producer
	awsCfg   aws.Config
}

// NewCompositionRoot creates the producer for the configured transport.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger, gormDB *gorm.DB, sqlxDB *sqlx.DB) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		sqlxDB:     sqlxDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
	}

	switch cfg.Messaging.Transport {
	case TransportKafka:
		c.producer = kafkaout.NewProducer(kafkaout.Config{
			Brokers:      cfg.Kafka.Brokers,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
	case TransportSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		c.awsCfg = awsCfg

		client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			}
		})
		c.producer = snsout.NewProducer(client, map[string]string{
			cfg.Messaging.Topics.PaymentRequest:            cfg.AWS.PaymentRequestTopicARN,
			cfg.Messaging.Topics.RestaurantApprovalRequest: cfg.AWS.RestaurantApprovalRequestTopicARN,
		})
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Messaging.Transport)
	}

	return c, nil
}

// Close flushes the producer.
func (c *CompositionRoot) Close() error {
	return c.producer.Close()
}

func (c *CompositionRoot) CreateOrderDomainService() services.OrderDomainService {
	return services.NewOrderDomainService(c.logger)
}

func (c *CompositionRoot) CreateOrderCreatedPaymentRequestPublisher() *wire.OrderCreatedPaymentRequestPublisher {
	return wire.NewOrderCreatedPaymentRequestPublisher(c.producer, c.cfg.Messaging.Topics.PaymentRequest, c.uowFactory, c.logger)
}

func (c *CompositionRoot) CreateOrderCancelledPaymentRequestPublisher() *wire.OrderCancelledPaymentRequestPublisher {
	return wire.NewOrderCancelledPaymentRequestPublisher(c.producer, c.cfg.Messaging.Topics.PaymentRequest, c.uowFactory, c.logger)
}

func (c *CompositionRoot) CreateOrderPaidRestaurantRequestPublisher() *wire.OrderPaidRestaurantRequestPublisher {
	return wire.NewOrderPaidRestaurantRequestPublisher(
		c.producer, c.cfg.Messaging.Topics.RestaurantApprovalRequest, c.uowFactory, c.logger)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	handler := commands.NewCreateOrderCommandHandler(
		customerrepo.NewPostgresCustomerRepository(c.sqlxDB),
		restaurantrepo.NewPostgresRestaurantRepository(c.sqlxDB),
		c.orderUoWFactory(),
		c.CreateOrderDomainService(),
		c.CreateOrderCreatedPaymentRequestPublisher(),
		c.logger,
	)
	return &handler
}

func (c *CompositionRoot) CreateRelayOutboxCommandHandler() *commands.RelayOutboxCommandHandler {
	handler := commands.NewRelayOutboxCommandHandler(c.uowFactory, wire.NewOutboxSender(c.producer), c.logger)
	return &handler
}

func (c *CompositionRoot) CreateTrackOrderQueryHandler() queries.TrackOrderQueryHandler {
	return queries.NewTrackOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreatePaymentSaga() *sagas.PaymentSaga {
	return sagas.NewPaymentSaga(c.orderUoWFactory(), c.CreateOrderDomainService(), c.CreateOrderPaidRestaurantRequestPublisher(), c.logger)
}

func (c *CompositionRoot) CreateRestaurantApprovalSaga() *sagas.RestaurantApprovalSaga {
	return sagas.NewRestaurantApprovalSaga(c.orderUoWFactory(), c.CreateOrderDomainService(),
		c.CreateOrderCancelledPaymentRequestPublisher(), c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(c.CreateCreateOrderCommandHandler(), c.CreateTrackOrderQueryHandler(), c.logger)
}

// CreateResponseHandlers routes each response topic to its saga listener.
func (c *CompositionRoot) CreateResponseHandlers() map[string]broker.Handler {
	payment := messaging.NewPaymentResponseListener(c.CreatePaymentSaga(), c.logger)
	approval := messaging.NewRestaurantApprovalResponseListener(c.CreateRestaurantApprovalSaga(), c.logger)

	return map[string]broker.Handler{
		c.cfg.Messaging.Topics.PaymentResponse:            payment.Handle,
		c.cfg.Messaging.Topics.RestaurantApprovalResponse: approval.Handle,
	}
}

// CreateConsumer builds the consumer of the configured transport.
func (c *CompositionRoot) CreateConsumer() (broker.Consumer, error) {
	retry := broker.RetryPolicy{
		MaxRetries:      c.cfg.Messaging.Retry.MaxRetries,
		InitialInterval: c.cfg.Messaging.Retry.InitialInterval,
		MaxInterval:     c.cfg.Messaging.Retry.MaxInterval,
	}

	switch c.cfg.Messaging.Transport {
	case TransportKafka:
		return kafkain.NewConsumer(c.logger, kafkain.Config{
			Brokers:         c.cfg.Kafka.Brokers,
			GroupID:         c.cfg.Kafka.GroupID,
			MaxWait:         c.cfg.Kafka.MaxWait,
			BatchTimeout:    c.cfg.Kafka.BatchTimeout,
			SleepAfterError: c.cfg.Kafka.SleepAfterError,
			Retry:           retry,
		}, c.CreateResponseHandlers()), nil
	case TransportSQS:
		client := sqs.NewFromConfig(c.awsCfg, func(o *sqs.Options) {
			if c.cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.cfg.AWS.Endpoint)
			}
		})
		return sqsin.NewConsumer(c.logger, client, sqsin.Config{
			QueueURL:          c.cfg.AWS.QueueURL,
			WaitTimeSeconds:   c.cfg.AWS.WaitTimeSeconds,
			VisibilityTimeout: c.cfg.AWS.VisibilityTimeout,
			Retry:             retry,
		}, c.CreateResponseHandlers()), nil
	}

	return nil, errors.New("unknown transport " + c.cfg.Messaging.Transport)
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	cmd, err := commands.NewRelayOutboxCommand(c.cfg.Outbox.BatchSize, c.cfg.Outbox.MaxAttempts, c.cfg.Outbox.Lease)
	if err != nil {
		return nil, err
	}

	relay := jobs.NewOutboxRelayJob(c.CreateRelayOutboxCommandHandler(), cmd, c.cfg.Outbox.Schedule, c.logger)
	return jobs.NewJobManager(relay), nil
}

func (c *CompositionRoot) orderUoWFactory() ports.OrderUnitOfWorkFactory {
	return FuncOrderUoWFactory(func() ports.OrderUnitOfWork {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() ports.OrderUnitOfWork

func (f FuncOrderUoWFactory) Create() ports.OrderUnitOfWork {
	return f()
}

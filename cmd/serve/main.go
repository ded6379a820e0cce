// Package classification SkyPortal Sharing Service.
//
// Publishes astronomical objects and their photometry to the Transient Name Server and Hermes
// through sharing services owned by groups.
//
// Terms Of Service:
//
// there are no TOS at this moment, use at your own risk we take no responsibility
//
//	Version: 0.1.0
//	License: BSD-3-Clause
//	Contact: <info@skyportal.io> https://github.com/skyportal/skyportal
//
//	Consumes:
//	  - application/json
//
//	Produces:
//	  - application/json
//
//	SecurityDefinitions:
//	  oauth2:
//	    type: oauth2
//	    tokenUrl: /tokens
//	    refreshUrl: /tokens
//	    flow: password
//
// swagger:meta
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-mail/mail"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/skyportal/skyportal/internal/log"
	"github.com/skyportal/skyportal/internal/middleware"
	"github.com/skyportal/skyportal/internal/ratelimit"
	"github.com/skyportal/skyportal/internal/server"
	"github.com/skyportal/skyportal/pkg/config"
	"github.com/skyportal/skyportal/pkg/dataaccess"
	"github.com/skyportal/skyportal/pkg/event"
	"github.com/skyportal/skyportal/pkg/group"
	"github.com/skyportal/skyportal/pkg/hermes"
	"github.com/skyportal/skyportal/pkg/instrument"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/photometry"
	"github.com/skyportal/skyportal/pkg/sharing"
	"github.com/skyportal/skyportal/pkg/source"
	"github.com/skyportal/skyportal/pkg/storage"
	"github.com/skyportal/skyportal/pkg/stream"
	"github.com/skyportal/skyportal/pkg/submission"
	"github.com/skyportal/skyportal/pkg/tns"
	"github.com/skyportal/skyportal/pkg/token"
	"github.com/skyportal/skyportal/pkg/user"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Failed to run skyportal", "error", err)
		os.Exit(1)
	}
}

// archive stores the payloads and responses of processed submissions.
type archive interface {
	Upload(ctx context.Context, bucket string, key string, contentType string, body []byte) error
}

// notifier mails the outcome of processed submissions.
type notifier interface {
	Notify(ctx context.Context, user *model.User, service *model.SharingService, submission *model.SharingServiceSubmission) error
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.New()

	logger := slog.New(log.New(log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		HandlerOptions: slog.HandlerOptions{
			AddSource: true,
			Level:     cfg.Logger.SlogLevel(),
		},
		PrettyPrint: cfg.Logger.PrettyPrint,
	})))
	slog.SetDefault(logger)

	shutdownTracing, err := setupTracing(cfg.JaegerURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shutdown tracing", "error", err)
		}
	}()

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return err
	}

	redisClient, err := storage.NewRedis(ctx, cfg.Redis.Address())
	if err != nil {
		return err
	}
	defer redisClient.Close()

	amqpConnection, err := amqp.Dial(cfg.RabbitMqURL.GetUrl())
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %v", err)
	}
	defer amqpConnection.Close()

	privateKey, err := cfg.Authentication.GetPrivateKey()
	if err != nil {
		return err
	}

	userService := user.NewService(user.NewRepository(db))
	groupService := group.NewService(group.NewRepository(db), userService)
	instrumentService := instrument.NewService(instrument.NewRepository(db))
	streamService := stream.NewService(stream.NewRepository(db), userService)
	sourceService := source.NewService(source.NewRepository(db), groupService)
	photometryService := photometry.NewService(photometry.NewRepository(db), sourceService, instrumentService, groupService, streamService)
	dataAccessService := dataaccess.NewService(instrumentService, streamService, sourceService, photometryService, cfg.PhotometryDetectionThreshold)

	cipher, err := sharing.NewAPIKeyCipher(cfg.AgeIdentity)
	if err != nil {
		return err
	}
	sharingService := sharing.NewService(sharing.NewRepository(db), cipher, groupService, userService, dataAccessService)

	err = user.CreateAdminUser(ctx, cfg.AdminUser.Username, cfg.AdminUser.Password, userService, groupService)
	if err != nil {
		return err
	}

	broker := event.NewBroker()
	queue, err := submission.NewQueue(amqpConnection)
	if err != nil {
		return err
	}
	defer queue.Close()

	submissionRepository := submission.NewRepository(db)
	submissionService := submission.NewService(submissionRepository, sharingService, dataAccessService, queue, broker)

	mapping, err := tns.LoadMapping(cfg.TNS.MappingFile)
	if err != nil {
		return err
	}
	limiter, err := ratelimit.NewFixedWindowLimiter(redisClient, "ratelimit", cfg.TNS.RateLimit, time.Duration(cfg.TNS.RateWindowSec)*time.Second)
	if err != nil {
		return err
	}

	var submissionArchive archive
	if cfg.S3.Bucket != "" {
		s3Config, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return fmt.Errorf("failed to load aws config: %v", err)
		}
		s3Client := s3.NewFromConfig(s3Config)
		submissionArchive = storage.NewS3Client(logger, s3Client, manager.NewUploader(s3Client))
	}

	var submissionNotifier notifier
	if cfg.SMTP.Host != "" {
		dialer := mail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		submissionNotifier = submission.NewMailNotifier(dialer, cfg.SMTP.From)
	}

	processor := submission.NewProcessor(
		logger,
		submissionRepository,
		sharingService,
		userService,
		dataAccessService,
		submission.Publishers{
			TNS:                tns.NewClient(logger, cfg.TNS.URL, cfg.TNS.SandboxURL),
			TNSMapping:         mapping,
			TNSLimiter:         limiter,
			Hermes:             hermes.NewClient(logger, cfg.Hermes.URL, cfg.Hermes.Token),
			DetectionThreshold: cfg.PhotometryDetectionThreshold,
		},
		submissionArchive,
		cfg.S3.Bucket,
		submissionNotifier,
		broker,
	)
	consumer, err := submission.NewConsumer(logger, amqpConnection, processor)
	if err != nil {
		return err
	}
	defer consumer.Close()

	authentication := middleware.NewAuthentication(&privateKey.PublicKey, userService)
	authorization := middleware.NewAuthorization(logger)

	r := server.GetEngine(logger, cfg.BasePath)
	router := r.Group(cfg.BasePath)
	tokenService := token.NewService(privateKey, cfg.Authentication.AccessTokenExpirationSeconds)
	user.Routes(router, authentication, authorization, user.NewHandler(userService, tokenService))
	group.Routes(router, authentication, authorization, group.NewHandler(groupService))
	instrument.Routes(router, authentication, authorization, instrument.NewHandler(instrumentService))
	stream.Routes(router, authentication, authorization, stream.NewHandler(streamService))
	source.Routes(router, authentication, source.NewHandler(logger, sourceService, submissionService))
	photometry.Routes(router, authentication, photometry.NewHandler(photometryService))
	sharing.Routes(router, authentication, sharing.NewHandler(sharingService))
	event.Routes(router, authentication.TokenAuthentication, event.NewHandler(logger, broker))
	submission.Routes(router, authentication, submission.NewHandler(submissionService))

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening and serving HTTP", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		return consumer.Consume(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// setupTracing exports spans to Jaeger. Tracing is disabled if no url is given.
func setupTracing(url string) (func(context.Context) error, error) {
	if url == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %v", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tracerProvider.Shutdown, nil
}

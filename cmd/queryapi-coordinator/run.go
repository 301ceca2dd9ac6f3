package main

// run.go – wiring for one coordinator process: config, storage, registry
// bootstrap, the lake streamer and the per-block pipeline.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"queryapi/coordinator"
	"queryapi/core"
	"queryapi/lake"
	"queryapi/metrics"
	"queryapi/pkg/config"
	"queryapi/primitives"
	"queryapi/registry"
	"queryapi/rpcclient"
	"queryapi/storage"
)

type startMode int

const (
	startFromBlock startMode = iota
	startFromInterruption
	startFromLatest
)

type startOptions struct {
	mode   startMode
	height uint64
}

// streamBuffer bounds how many decoded blocks wait between the lake
// streamer and the coordinator.
const streamBuffer = 100

func run(ctx context.Context, chainID core.ChainID, start startOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	initLogging(cfg)

	store, err := storage.Connect(ctx, cfg.Redis.ConnectionString)
	if err != nil {
		return err
	}
	defer store.Close()

	rpc := rpcclient.New(archivalRPCURL(chainID))

	logrus.Infof("fetching indexer functions from registry contract %s", cfg.Registry.ContractID)
	reg := registry.New()
	if err := reg.FetchFromContract(ctx, rpc, cfg.Registry.ContractID); err != nil {
		return err
	}
	logrus.Infof("registry loaded with %d indexer functions", reg.Len())

	startHeight, err := resolveStartHeight(ctx, start, store, rpc)
	if err != nil {
		return err
	}

	s3Client, err := lakeS3Client(ctx, cfg)
	if err != nil {
		return err
	}
	streamer := lake.NewStreamer(s3Client, lake.Config{
		Bucket:           lakeBucket(chainID),
		StartBlockHeight: startHeight,
	})

	metricsSrv := metrics.Serve(cfg.Metrics.Port)
	defer func() { _ = metricsSrv.Close() }()

	messages := make(chan *primitives.StreamerMessage, streamBuffer)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- streamer.Run(ctx, messages)
	}()

	coord := coordinator.New(chainID, reg, store)
	logrus.Infof("starting queryapi-coordinator on %s from block %d", chainID, startHeight)

	runErr := make(chan error, 1)
	go func() {
		runErr <- coord.Run(ctx, messages)
	}()

	select {
	case err := <-streamErr:
		cancel()
		<-runErr
		return fmt.Errorf("lake streamer stopped: %w", err)
	case err := <-runErr:
		cancel()
		return err
	}
}

// resolveStartHeight maps the start options onto a concrete block height.
func resolveStartHeight(ctx context.Context, start startOptions, store *storage.Client, rpc *rpcclient.Client) (uint64, error) {
	switch start.mode {
	case startFromBlock:
		return start.height, nil
	case startFromInterruption:
		height, err := store.LastIndexedBlock(ctx)
		if err != nil {
			return 0, fmt.Errorf("resolve last indexed block: %w", err)
		}
		return height + 1, nil
	case startFromLatest:
		height, err := rpc.FinalBlockHeight(ctx)
		if err != nil {
			return 0, fmt.Errorf("resolve finalized head: %w", err)
		}
		return height, nil
	}
	return 0, fmt.Errorf("unknown start mode %d", start.mode)
}

func lakeS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Lake.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Lake.AwsAccessKey, cfg.Lake.AwsSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func lakeBucket(chainID core.ChainID) string {
	if chainID == core.ChainIDTestnet {
		return lake.TestnetBucket
	}
	return lake.MainnetBucket
}

func archivalRPCURL(chainID core.ChainID) string {
	if chainID == core.ChainIDTestnet {
		return rpcclient.TestnetArchivalURL
	}
	return rpcclient.MainnetArchivalURL
}

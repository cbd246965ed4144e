package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/niksmo/sneakers/config"
	"github.com/niksmo/sneakers/internal/adapter"
	"github.com/niksmo/sneakers/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	cleanupPolicy = "delete"
	// orders are kept for a week
	retention = 7 * 24 * time.Hour
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	if len(cfg.Broker.SeedBrokers) == 0 {
		printFail(errors.New("broker.seed_brokers is empty"))
		return
	}

	cl, err := createClient(cfg)
	if err != nil {
		printFail(err)
		return
	}
	defer cl.Close()

	printStart(cfg)
	defer printComplete(time.Now())

	err = makeTopics(
		sigCtx, cl,
		cfg.Broker.Partitions, cfg.Broker.ReplicationFactor,
		cfg.Broker.OrdersTopic,
	)
	if err != nil {
		printFail(err)
	}
}

func createClient(cfg config.Config) (*kadm.Client, error) {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}

	if t := cfg.Broker.TLS; t.CAFile != "" {
		tlsConfig, err := adapter.MakeTLSConfig(t.CAFile, t.CertFile, t.KeyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	return kadm.NewOptClient(opts...)
}

func makeTopics(
	ctx context.Context,
	cl *kadm.Client,
	partitions int32,
	replicationFactor int16,
	topics ...string,
) error {
	var (
		policy   = cleanupPolicy
		minISR   = strconv.Itoa(min(int(replicationFactor), 2))
		retainMs = strconv.FormatInt(retention.Milliseconds(), 10)
	)

	config := map[string]*string{
		"cleanup.policy":      &policy,
		"min.insync.replicas": &minISR,
		"retention.ms":        &retainMs,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		config,
		topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		err := res.Err
		if err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printStart(cfg config.Config) {
	fmt.Printf(`initializing topics...
	- %q (partitions=%d, replication=%d)

`,
		cfg.Broker.OrdersTopic,
		cfg.Broker.Partitions,
		cfg.Broker.ReplicationFactor,
	)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}

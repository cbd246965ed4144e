// Package kafka publishes shop events to Kafka with franz-go.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrTooFewOpts = errors.New("too few options")

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
	topic   string
}

// ClientConfig is the connection part of the producer.
type ClientConfig struct {
	SeedBrokers []string
	Topic       string
	// TLS is nil for plaintext connections.
	TLS *tls.Config
}

// ProducerClientOpt dials the brokers and waits for a ping.
func ProducerClientOpt(ctx context.Context, cfg ClientConfig) ProducerOpt {
	return func(opts *producerOpts) error {
		if len(cfg.SeedBrokers) == 0 {
			return errors.New("no seed brokers")
		}
		if cfg.Topic == "" {
			return errors.New("topic is empty string")
		}

		kopts := []kgo.Opt{
			kgo.SeedBrokers(cfg.SeedBrokers...),
			kgo.DefaultProduceTopic(cfg.Topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		}
		if cfg.TLS != nil {
			kopts = append(kopts, kgo.DialTLSConfig(cfg.TLS))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		opts.topic = cfg.Topic
		return nil
	}
}

// ProducerKGOClientOpt uses an already built client.
func ProducerKGOClientOpt(cl ProducerClient, topic string) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		opts.topic = topic
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

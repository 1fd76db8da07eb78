package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/blobstore"
	"github.com/hupe1980/kernelscore/blobstore/minio"
	"github.com/hupe1980/kernelscore/blobstore/s3"
	"github.com/hupe1980/kernelscore/codec"
	"github.com/hupe1980/kernelscore/persistence"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the CLI.
type Config struct {
	LogLevel    string      `yaml:"log_level"`
	Codec       string      `yaml:"codec"`
	Compression string      `yaml:"compression"`
	Store       StoreConfig `yaml:"store"`
}

// StoreConfig selects where model paths are resolved.
//
// With kind "local" and no root, a model path is an ordinary file path.
// Otherwise model paths are blob names inside the store.
type StoreConfig struct {
	Kind      string `yaml:"kind"` // local, s3 or minio
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "warn",
		Codec:       "go-json",
		Compression: "none",
		Store:       StoreConfig{Kind: "local"},
	}
}

// LoadConfig reads path over DefaultConfig. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in config: %w", err)
	}

	return cfg, nil
}

// Logger builds the logger for LogLevel.
func (c Config) Logger() (*kernelscore.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return kernelscore.NewTextLogger(level), nil
}

// RecordCodec returns the configured record codec.
func (c Config) RecordCodec() (codec.Codec, error) {
	cc, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", c.Codec)
	}
	return cc, nil
}

// Resolve maps a model path to a store and a blob name.
func (c Config) Resolve(ctx context.Context, path string) (blobstore.BlobStore, string, error) {
	if path == "" {
		return nil, "", errors.New("model path is required")
	}

	sc := c.Store
	switch sc.Kind {
	case "", "local":
		if sc.Root == "" {
			return blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path), nil
		}
		return blobstore.NewLocalStore(sc.Root), path, nil
	case "s3":
		var opts []func(*s3.Options)
		if sc.Prefix != "" {
			opts = append(opts, s3.WithPrefix(sc.Prefix))
		}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint, true))
		}
		store, err := s3.New(ctx, sc.Bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, path, nil
	case "minio":
		store, err := minio.Dial(sc.Endpoint, sc.AccessKey, sc.SecretKey, sc.Secure, sc.Bucket, sc.Prefix)
		if err != nil {
			return nil, "", err
		}
		return store, path, nil
	default:
		return nil, "", fmt.Errorf("unknown store kind %q", sc.Kind)
	}
}

// env holds what every command needs after flags and config are merged.
type env struct {
	cfg         Config
	logger      *kernelscore.Logger
	codec       codec.Codec
	compression persistence.Compression
}

func (e *env) modelOptions() []kernelscore.Option {
	return []kernelscore.Option{
		kernelscore.WithCodec(e.codec),
		kernelscore.WithLogger(e.logger),
	}
}

func (e *env) openModel(ctx context.Context, path string) (*kernelscore.KernelModel, error) {
	store, name, err := e.cfg.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return persistence.Open(ctx, store, name, persistence.WithModelOptions(e.modelOptions()...))
}

func (e *env) saveModel(ctx context.Context, path string, m *kernelscore.KernelModel, c persistence.Compression) (persistence.Info, error) {
	store, name, err := e.cfg.Resolve(ctx, path)
	if err != nil {
		return persistence.Info{}, err
	}
	return persistence.Save(ctx, store, name, m, func(o *persistence.Options) {
		o.Compression = c
	})
}

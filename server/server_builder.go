package server

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/saqibaltaf27/Convertly/server/config"
	"github.com/saqibaltaf27/Convertly/server/convert"
)

// ServerBuilder provides a fluent interface for building conversion servers.
// Collaborators left unset fall back to the production implementations.
type ServerBuilder interface {
	// WithStore sets a custom artifact store
	WithStore(store ArtifactStore) ServerBuilder

	// WithPDFEngine sets a custom PDF engine
	WithPDFEngine(engine convert.PDFEngine) ServerBuilder

	// WithImageCodec sets a custom image codec
	WithImageCodec(codec convert.ImageCodec) ServerBuilder

	// WithOfficeConverter sets a custom office converter
	WithOfficeConverter(converter convert.OfficeConverter) ServerBuilder

	// WithSizeTargetedCompressor sets a custom external compressor
	WithSizeTargetedCompressor(compressor SizeTargetedCompressor) ServerBuilder

	// Build creates and returns the configured conversion server
	Build() (ConversionServer, error)
}

var _ ServerBuilder = (*ServerBuilderImpl)(nil)

// ServerBuilderImpl is the concrete implementation of ServerBuilder
type ServerBuilderImpl struct {
	config *config.Config
	logger *zap.Logger

	store  ArtifactStore
	pdf    convert.PDFEngine
	images convert.ImageCodec
	office convert.OfficeConverter
	gs     SizeTargetedCompressor
}

// NewServerBuilder creates a builder with required dependencies
func NewServerBuilder(cfg *config.Config, logger *zap.Logger) ServerBuilder {
	return &ServerBuilderImpl{
		config: cfg,
		logger: logger,
	}
}

func (b *ServerBuilderImpl) WithStore(store ArtifactStore) ServerBuilder {
	b.store = store
	return b
}

func (b *ServerBuilderImpl) WithPDFEngine(engine convert.PDFEngine) ServerBuilder {
	b.pdf = engine
	return b
}

func (b *ServerBuilderImpl) WithImageCodec(codec convert.ImageCodec) ServerBuilder {
	b.images = codec
	return b
}

func (b *ServerBuilderImpl) WithOfficeConverter(converter convert.OfficeConverter) ServerBuilder {
	b.office = converter
	return b
}

func (b *ServerBuilderImpl) WithSizeTargetedCompressor(compressor SizeTargetedCompressor) ServerBuilder {
	b.gs = compressor
	return b
}

// Build creates and returns the configured conversion server
func (b *ServerBuilderImpl) Build() (ConversionServer, error) {
	if b.config == nil {
		return nil, fmt.Errorf("configuration must be provided")
	}

	if b.store == nil {
		store, err := NewArtifactStore(&b.config.StorageConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create artifact store: %w", err)
		}
		b.store = store
	}

	if b.pdf == nil {
		b.pdf = convert.NewPDFCPUEngine()
	}
	if b.images == nil {
		b.images = convert.NewImagingCodec()
	}
	if b.office == nil {
		b.office = convert.NewDocumentConverter()
	}
	if b.gs == nil {
		b.gs = convert.NewGhostscript(
			b.config.ConvertConfig.GhostscriptBinary,
			b.config.ConvertConfig.GhostscriptTimeout,
			b.logger,
		)
	}

	return NewConversionServer(b.config, b.logger, b.store, b.pdf, b.images, b.office, b.gs), nil
}

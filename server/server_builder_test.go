package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/saqibaltaf27/Convertly/server/config"
)

func builderConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerConfig:    config.ServerConfig{Port: "8080"},
		StorageConfig:   config.StorageConfig{Provider: "filesystem", BasePath: t.TempDir()},
		RetentionConfig: config.RetentionConfig{MaxAge: time.Hour, SweepInterval: 10 * time.Minute},
		ConvertConfig:   config.ConvertConfig{ImageQuality: 50, GhostscriptBinary: "gs", GhostscriptTimeout: time.Minute},
	}
}

func TestServerBuilder_DefaultCollaborators(t *testing.T) {
	srv, err := NewServerBuilder(builderConfig(t), zaptest.NewLogger(t)).Build()
	require.NoError(t, err)
	require.NotNil(t, srv)

	impl, ok := srv.(*ConversionServerImpl)
	require.True(t, ok)
	assert.NotNil(t, impl.store)
	assert.NotNil(t, impl.pdf)
	assert.NotNil(t, impl.images)
	assert.NotNil(t, impl.office)
	assert.NotNil(t, impl.gs)
	assert.NotNil(t, impl.sweeper)
}

func TestServerBuilder_CustomCollaborators(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	pdf := &fakePDFEngine{pageCount: 1}

	srv, err := NewServerBuilder(builderConfig(t), zaptest.NewLogger(t)).
		WithStore(store).
		WithPDFEngine(pdf).
		WithImageCodec(&fakeImageCodec{}).
		WithOfficeConverter(&fakeOffice{}).
		WithSizeTargetedCompressor(&fakeCompressor{}).
		Build()
	require.NoError(t, err)

	impl, ok := srv.(*ConversionServerImpl)
	require.True(t, ok)
	assert.Same(t, store, impl.store)
	assert.Same(t, pdf, impl.pdf)
}

func TestServerBuilder_RequiresConfig(t *testing.T) {
	_, err := NewServerBuilder(nil, zaptest.NewLogger(t)).Build()
	assert.Error(t, err)
}

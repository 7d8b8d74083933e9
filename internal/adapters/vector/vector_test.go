package vector_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/iconsmith/internal/adapters/vector"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 16 16">
  <rect x="0" y="0" width="16" height="16" fill="#ff0000"/>
</svg>`

func writeSVG(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icon.svg")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRender(t *testing.T) {
	path := writeSVG(t, redSquare)

	bmp, err := vector.New().Render(context.Background(), path, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, bmp.Width)
	assert.Equal(t, 32, bmp.Height)

	img, err := bmp.Image()
	require.NoError(t, err)
	r, g, b, a := img.At(16, 16).RGBA()
	assert.Equal(t, uint32(0xff), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0), b>>8)
	assert.Equal(t, uint32(0xff), a>>8)
}

func TestRasterize_Errors(t *testing.T) {
	_, err := vector.Rasterize(strings.NewReader(redSquare), 0)
	require.ErrorIs(t, err, domain.ErrInvalidSize)

	_, err = vector.Rasterize(strings.NewReader("not svg at all <"), 16)
	require.ErrorIs(t, err, domain.ErrRasterizerFailed)
}

func TestRender_MissingSource(t *testing.T) {
	_, err := vector.New().Render(context.Background(), filepath.Join(t.TempDir(), "gone.svg"), 16)
	require.ErrorIs(t, err, domain.ErrRasterizerFailed)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := vector.New().Render(ctx, writeSVG(t, redSquare), 16)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRenderRegion_Unsupported(t *testing.T) {
	_, err := vector.New().RenderRegion(context.Background(), "/icons/master.svg", "rect16x16", 96)
	require.ErrorIs(t, err, domain.ErrRegionUnsupported)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	want := domain.Bitmap{Width: 16, Height: 16, Data: []byte{1}}

	t.Run("primary success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockRasterizer(ctrl)
		fallback := mocks.NewMockRasterizer(ctrl)
		primary.EXPECT().Render(ctx, "a.svg", 16).Return(want, nil)

		got, err := vector.NewChain(primary, fallback, mocks.NewMockLogger(ctrl)).Render(ctx, "a.svg", 16)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("falls back once binary is missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockRasterizer(ctrl)
		fallback := mocks.NewMockRasterizer(ctrl)
		logger := mocks.NewMockLogger(ctrl)

		primary.EXPECT().Render(ctx, "a.svg", 16).Return(domain.Bitmap{}, domain.ErrRasterizerNotFound).Times(2)
		fallback.EXPECT().Render(ctx, "a.svg", 16).Return(want, nil).Times(2)
		logger.EXPECT().Warn(gomock.Any()).Times(1)

		chain := vector.NewChain(primary, fallback, logger)
		for range 2 {
			got, err := chain.Render(ctx, "a.svg", 16)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("other failures are returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockRasterizer(ctrl)
		fallback := mocks.NewMockRasterizer(ctrl)
		primary.EXPECT().Render(ctx, "a.svg", 16).Return(domain.Bitmap{}, domain.ErrRasterizerFailed)

		_, err := vector.NewChain(primary, fallback, mocks.NewMockLogger(ctrl)).Render(ctx, "a.svg", 16)
		require.ErrorIs(t, err, domain.ErrRasterizerFailed)
	})

	t.Run("regions use primary only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockRasterizer(ctrl)
		fallback := mocks.NewMockRasterizer(ctrl)
		primary.EXPECT().RenderRegion(ctx, "m.svg", "rect16x16", 96).Return(domain.Bitmap{}, domain.ErrRasterizerNotFound)

		_, err := vector.NewChain(primary, fallback, mocks.NewMockLogger(ctrl)).RenderRegion(ctx, "m.svg", "rect16x16", 96)
		require.ErrorIs(t, err, domain.ErrRasterizerNotFound)
	})
}

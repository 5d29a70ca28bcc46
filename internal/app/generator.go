package app

import (
	"context"
	"fmt"
	"math"

	"astro-highpass/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator writes synthetic star fields: a smooth tilted background,
// Gaussian point sources and white noise.
type Generator struct {
	logger *zap.Logger
	config *domain.Config
	writer domain.ImageWriter
}

func NewGenerator(logger *zap.Logger, config *domain.Config, writer domain.ImageWriter) *Generator {
	return &Generator{logger: logger, config: config, writer: writer}
}

// Frame builds the image for index. The same seed and index always give the
// same frame.
func (g *Generator) Frame(index int) *mat.Dense {
	cfg := g.config.Generator
	ny, nx := g.config.NY, g.config.NX
	src := rand.NewSource(cfg.Seed + uint64(index)*0x9E3779B97F4A7C15)

	frame := mat.NewDense(ny, nx, nil)

	noise := distuv.Normal{Mu: 0, Sigma: cfg.Noise, Src: src}
	for i := range ny {
		for j := range nx {
			background := cfg.Background + cfg.Gradient*(float64(i)+float64(j))
			frame.Set(i, j, background+noise.Rand())
		}
	}

	posY := distuv.Uniform{Min: 0, Max: float64(ny), Src: src}
	posX := distuv.Uniform{Min: 0, Max: float64(nx), Src: src}
	flux := distuv.Exponential{Rate: 1 / cfg.Flux, Src: src}

	sigma := cfg.FWHM / (2 * math.Sqrt(2*math.Ln2))
	radius := int(math.Ceil(4 * sigma))
	for range cfg.Sources {
		cy, cx, amp := posY.Rand(), posX.Rand(), flux.Rand()
		addSource(frame, cy, cx, amp, sigma, radius)
	}

	return frame
}

func addSource(frame *mat.Dense, cy, cx, amp, sigma float64, radius int) {
	ny, nx := frame.Dims()
	y0, x0 := int(cy), int(cx)
	for i := max(0, y0-radius); i <= min(ny-1, y0+radius); i++ {
		for j := max(0, x0-radius); j <= min(nx-1, x0+radius); j++ {
			dy, dx := float64(i)-cy, float64(j)-cx
			frame.Set(i, j, frame.At(i, j)+amp*math.Exp(-(dy*dy+dx*dx)/(2*sigma*sigma)))
		}
	}
}

// Generate writes one image per index to config.ImagePath, using at most
// config.Workers goroutines. The first failure stops the remaining writes.
func (g *Generator) Generate(ctx context.Context, indices []int) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, g.config.Workers))

	for _, index := range indices {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := g.config.ImagePath(index)
			if err := g.writer.WriteImage(path, g.Frame(index)); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			g.logger.Debug("Generated image", zap.Int("index", index), zap.String("file", path))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	g.logger.Info("Generated images",
		zap.Int("count", len(indices)),
		zap.Int("ny", g.config.NY),
		zap.Int("nx", g.config.NX),
		zap.String("dir", g.config.ImageDir))
	return nil
}

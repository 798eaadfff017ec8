package report

import (
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"io"
	"os"

	"github.com/psykhi/wordclouds"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot/palette/moreland"

	"github.com/open-sauced/pizza/gitstats/pkg/aggregate"
)

const (
	cloudWidth    = 1200
	cloudHeight   = 600
	cloudColors   = 8
	cloudMaxFont  = 96
	cloudMinFont  = 10
	paletteLowEnd = 0.15
	paletteSpan   = 0.6
)

// FontConfig selects the font used to draw the word cloud.
type FontConfig struct {
	// Resource is the preferred font file.
	Resource string

	// LocaleFonts are tried in order when Resource is unset or unusable,
	// typically fonts covering non-Latin scripts.
	LocaleFonts []string
}

func (r *Reporter) wordCloud(freq []aggregate.WordCount, path string) (err error) {
	var img image.Image
	if len(freq) == 0 {
		r.logger.Warnf("No words left after filtering, writing an empty word cloud")
		blank := image.NewRGBA(image.Rect(0, 0, cloudWidth, cloudHeight))
		imagedraw.Draw(blank, blank.Bounds(), image.NewUniform(color.White), image.Point{}, imagedraw.Src)
		img = blank
	} else {
		fontPath, cleanup, err := r.resolveFont()
		if err != nil {
			return err
		}
		defer cleanup()

		colors, err := cloudPalette(cloudColors)
		if err != nil {
			return err
		}

		counts := make(map[string]int, len(freq))
		for _, wc := range freq {
			counts[wc.Word] = wc.Count
		}

		img, err = drawCloud(counts, fontPath, colors)
		if err != nil {
			return err
		}
	}

	return writeFileAtomic(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

// drawCloud lays out the words. The layout library panics on fonts it cannot
// load, which is turned into an error here.
func drawCloud(counts map[string]int, fontPath string, colors []color.Color) (img image.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("word cloud layout failed: %v", rec)
		}
	}()

	wc := wordclouds.NewWordcloud(
		counts,
		wordclouds.FontFile(fontPath),
		wordclouds.Width(cloudWidth),
		wordclouds.Height(cloudHeight),
		wordclouds.FontMaxSize(cloudMaxFont),
		wordclouds.FontMinSize(cloudMinFont),
		wordclouds.Colors(colors),
		wordclouds.BackgroundColor(color.White),
		wordclouds.RandomPlacement(false),
	)
	return wc.Draw(), nil
}

// resolveFont returns the first usable font among the configured resource and
// the locale fonts, falling back to the embedded Go font. The cleanup func
// removes any temporary file created for the fallback.
func (r *Reporter) resolveFont() (string, func(), error) {
	candidates := append([]string{r.opts.Fonts.Resource}, r.opts.Fonts.LocaleFonts...)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := checkFont(candidate); err != nil {
			r.logger.Warnf("Font %s is unusable, trying the next one: %s", candidate, err.Error())
			continue
		}
		r.logger.Debugf("Using font %s for the word cloud", candidate)
		return candidate, func() {}, nil
	}

	f, err := os.CreateTemp("", "gitstats-font-*.ttf")
	if err != nil {
		return "", nil, fmt.Errorf("could not stage fallback font: %s", err.Error())
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(goregular.TTF); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("could not stage fallback font: %s", err.Error())
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("could not stage fallback font: %s", err.Error())
	}

	r.logger.Debugf("Using the embedded Go font for the word cloud")
	return f.Name(), cleanup, nil
}

func checkFont(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = opentype.Parse(data)
	return err
}

// cloudPalette samples n colors from the Kindlmann map, a perceptually
// uniform ramp, skipping its near-black and near-white ends.
func cloudPalette(n int) ([]color.Color, error) {
	cm := moreland.Kindlmann()
	cm.SetMin(0)
	cm.SetMax(1)

	colors := make([]color.Color, 0, n)
	for i := 0; i < n; i++ {
		v := paletteLowEnd
		if n > 1 {
			v += paletteSpan * float64(i) / float64(n-1)
		}
		c, err := cm.At(v)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

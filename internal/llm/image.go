package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"copydesk/internal/core"
)

// DefaultImageModel is the default model for generated cover images.
const DefaultImageModel = "imagen-3.0-generate-002"

const imagePromptTemplate = `A clean editorial cover illustration for an article titled %q
on the topic of %s. Professional, muted palette, no text in the image.`

// ImageGenerator adapts the Gemini client to the resource resolver's override
// tier. Generated images are written under outDir and referenced by path.
type ImageGenerator struct {
	client *Client
	model  string
	outDir string
}

// NewImageGenerator wires an image generator on top of an existing client.
func NewImageGenerator(client *Client, model, outDir string) *ImageGenerator {
	if model == "" {
		model = DefaultImageModel
	}
	if outDir == "" {
		outDir = "assets/generated"
	}
	return &ImageGenerator{client: client, model: model, outDir: outDir}
}

// GenerateImage produces one cover image for the item and saves it to disk.
func (g *ImageGenerator) GenerateImage(ctx context.Context, item core.ItemSpec) (core.Resource, error) {
	topic := item.Category
	if topic == "" {
		topic = item.Keyword
	}
	prompt := fmt.Sprintf(imagePromptTemplate, item.Title, topic)

	resp, err := g.client.gClient.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return core.Resource{}, fmt.Errorf("image generation failed for %q: %w", item.Keyword, err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return core.Resource{}, fmt.Errorf("image generation returned no image for %q", item.Keyword)
	}

	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return core.Resource{}, fmt.Errorf("failed to create image directory %s: %w", g.outDir, err)
	}
	name := imageSlug(item.Keyword) + ".png"
	path := filepath.Join(g.outDir, name)
	if err := os.WriteFile(path, resp.GeneratedImages[0].Image.ImageBytes, 0o644); err != nil {
		return core.Resource{}, fmt.Errorf("failed to save generated image: %w", err)
	}

	return core.Resource{
		ID:        "gen-" + imageSlug(item.Keyword),
		URL:       path,
		Alt:       fmt.Sprintf("Illustration for %s", item.Title),
		Source:    "generated",
		Generated: true,
	}, nil
}

func imageSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(sb.String(), "-")
}

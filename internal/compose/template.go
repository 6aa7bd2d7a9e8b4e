package compose

import (
	"context"
	"math/rand"
	"time"

	"github.com/bkellam/autochatter/internal/core"
)

// defaultTemplates is used when the configuration supplies none.
var defaultTemplates = []string{
	"Great video! Really enjoyed this content. 🎉",
	"Amazing work! Keep it up! 👏",
	"This is exactly what I was looking for! Thank you! 🙏",
	"Absolutely love your content! Can't wait for more! ❤️",
	"Incredible video! Very well done! 🌟",
	"This is so helpful! Thanks for sharing! 💯",
	"Wow, this is fantastic! Keep creating! 🚀",
	"Really appreciate this content! Well done! 👍",
	"Outstanding video! Very informative! 📚",
	"Love this! More content like this please! 🔥",
}

// TemplateComposer picks a comment uniformly at random from a fixed list.
type TemplateComposer struct {
	templates []string
	promoLink string
	rng       *rand.Rand
}

// NewTemplateComposer builds a composer over templates (the built-in list when
// empty). rng may be nil; tests pass a seeded source.
func NewTemplateComposer(templates []string, promoLink string, rng *rand.Rand) *TemplateComposer {
	if len(templates) == 0 {
		templates = defaultTemplates
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TemplateComposer{
		templates: templates,
		promoLink: promoLink,
		rng:       rng,
	}
}

func (c *TemplateComposer) ChooseText(_ context.Context, _ core.Video) (string, error) {
	return c.templates[c.rng.Intn(len(c.templates))], nil
}

// PromoFragment returns the community invite line, or "" when no link is
// configured.
func (c *TemplateComposer) PromoFragment() string {
	if c.promoLink == "" {
		return ""
	}
	return "Join our community: " + c.promoLink
}

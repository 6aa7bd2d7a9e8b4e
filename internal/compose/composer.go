package compose

import (
	"context"

	"github.com/bkellam/autochatter/internal/core"
)

// Composer produces comment text for a video. Implementations must be free of
// side effects on the watch loop; the decision to append PromoFragment is the
// scheduler's, not the composer's.
type Composer interface {
	ChooseText(ctx context.Context, video core.Video) (string, error)
	PromoFragment() string
}

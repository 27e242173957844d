package fx

import (
	"github.com/orgball2608/tint-feed/internal/repositories/kv"
	"go.uber.org/fx"
)

var Module = fx.Options(
	kv.Module,
)

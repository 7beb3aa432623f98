package html2pdf

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CheckAvailability probes b and, when install is true and the backend can
// install itself, installs it and probes again. It never returns an error:
// failed installs and panicking probes degrade to Unavailable.
func CheckAvailability(ctx context.Context, b Backend, install bool, logger *zap.Logger) Availability {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("backend", b.Name()))

	availability := safeProbe(ctx, b, log)
	if availability == Available {
		return Available
	}

	inst, ok := b.(Installer)
	if !install || !ok || availability != Installable {
		log.Debug("backend not available", zap.Stringer("availability", availability))
		return availability
	}

	log.Info("installing backend")
	if err := safeInstall(ctx, inst); err != nil {
		log.Warn("backend install failed", zap.Error(err))
		return Unavailable
	}

	availability = safeProbe(ctx, b, log)
	if availability != Available {
		log.Warn("backend still unavailable after install", zap.Stringer("availability", availability))
		return Unavailable
	}
	log.Info("backend installed")
	return Available
}

func safeProbe(ctx context.Context, b Backend, log *zap.Logger) (a Availability) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("backend probe panicked", zap.Any("panic", r))
			a = Unavailable
		}
	}()
	return b.Probe(ctx)
}

func safeInstall(ctx context.Context, inst Installer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("install panicked: %v", r)
		}
	}()
	return inst.Install(ctx)
}

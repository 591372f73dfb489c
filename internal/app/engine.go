package app

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"resengine/internal/core"
	"resengine/internal/ports"
	"resengine/internal/shared"
	"resengine/internal/types"
)

// Engine is an AssetManager loaded from a set of sources, together with
// the reporting helpers the CLI and the HTTP API share.
type Engine struct {
	Manager        *core.AssetManager
	DefaultPackage string
}

// Open loads every source and builds an AssetManager for the requested
// configuration.
func (s Service) Open(ctx context.Context, req OpenRequest) (*Engine, error) {
	if len(req.SystemSources)+len(req.Sources) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one source is required")
	}
	cfg, err := types.ParseQualifiers(req.Configuration)
	if err != nil {
		return nil, err
	}

	var sources []ports.Source
	load := func(paths []string, system bool) error {
		for _, path := range paths {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			source, err := s.Loader.Load(ctx, path, system)
			if err != nil {
				return err
			}
			sources = append(sources, source)
		}
		return nil
	}
	if err := load(req.SystemSources, true); err != nil {
		return nil, err
	}
	if err := load(req.Sources, false); err != nil {
		return nil, err
	}

	am := core.NewAssetManager()
	am.SetSources(sources, true)
	am.SetConfiguration(cfg)

	engine := &Engine{Manager: am, DefaultPackage: strings.TrimSpace(req.Package)}
	if engine.DefaultPackage == "" {
		for i := len(sources) - 1; i >= 0 && engine.DefaultPackage == ""; i-- {
			if pkgs := sources[i].Packages(); len(pkgs) > 0 {
				engine.DefaultPackage = pkgs[0].PackageName()
			}
		}
	}
	log.Info().
		Int("sources", len(sources)).
		Str("configuration", cfg.String()).
		Str("package", engine.DefaultPackage).
		Msg("asset manager ready")
	return engine, nil
}

// ParseRef accepts a hexadecimal id or a resource name. fallbackType fills
// in names given without a type.
func (e *Engine) ParseRef(ref, fallbackType string) (types.ResID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource reference is required")
	}
	if shared.IsHexResID(ref) {
		return shared.ParseResID(ref)
	}
	return e.Manager.GetResourceID(ref, fallbackType, e.DefaultPackage)
}

func (e *Engine) Resolve(ctx context.Context, req ResolveRequest) (types.ValueReport, error) {
	resid, err := e.ParseRef(req.Ref, "")
	if err != nil {
		return types.ValueReport{}, err
	}
	var density uint16
	if strings.TrimSpace(req.Density) != "" {
		cfg, err := types.ParseQualifiers(req.Density)
		if err != nil {
			return types.ValueReport{}, err
		}
		if cfg.Density == 0 || cfg.Diff(types.Configuration{}) != types.ConfigDensity {
			return types.ValueReport{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("density override %q must be a single density qualifier", req.Density))
		}
		density = cfg.Density
	}
	value, err := e.Manager.GetResource(resid, req.MayBeBag, density)
	if err != nil {
		return types.ValueReport{}, err
	}
	if req.Follow {
		if value, err = e.Manager.ResolveReference(value); err != nil {
			return types.ValueReport{}, err
		}
	}
	return e.valueReport(resid, value), nil
}

func (e *Engine) Bag(ctx context.Context, req BagRequest) (types.BagReport, error) {
	resid, err := e.ParseRef(req.Ref, "style")
	if err != nil {
		return types.BagReport{}, err
	}
	bag, err := e.Manager.GetBag(resid)
	if err != nil {
		return types.BagReport{}, err
	}
	report := types.BagReport{
		ResID:         resid.String(),
		Name:          e.nameOf(resid),
		Configuration: e.Manager.Configuration().String(),
		TypeSpecFlags: shared.FormatFlags(bag.TypeSpecFlags),
		Entries:       make([]types.BagEntryReport, 0, len(bag.Entries)),
	}
	for _, entry := range bag.Entries {
		report.Entries = append(report.Entries, types.BagEntryReport{
			Key:     entry.Key.String(),
			Name:    e.nameOf(entry.Key),
			Type:    entry.Value.Type.String(),
			Data:    fmt.Sprintf("0x%08x", entry.Value.Data),
			Display: e.display(entry.Cookie, entry.Value),
			Cookie:  int32(entry.Cookie),
		})
	}
	return report, nil
}

// Theme applies the styles in order and reads every requested attribute
// back. Attributes the theme does not define are skipped.
func (e *Engine) Theme(ctx context.Context, req ThemeRequest) (types.ThemeReport, error) {
	if len(req.Styles) == 0 {
		return types.ThemeReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one style is required")
	}
	theme := e.Manager.NewTheme()
	report := types.ThemeReport{Configuration: e.Manager.Configuration().String()}
	for _, style := range req.Styles {
		resid, err := e.ParseRef(style.Ref, "style")
		if err != nil {
			return types.ThemeReport{}, err
		}
		if err := theme.ApplyStyle(resid, style.Force); err != nil {
			return types.ThemeReport{}, err
		}
		report.Styles = append(report.Styles, resid.String())
	}
	report.TypeSpecFlags = shared.FormatFlags(theme.TypeSpecFlags())

	for _, attr := range req.Attributes {
		resid, err := e.ParseRef(attr, "attr")
		if err != nil {
			return types.ThemeReport{}, err
		}
		value, err := theme.GetAttribute(resid)
		if core.IsNotFound(err) && !core.IsChainExhausted(err) {
			log.Debug().Str("attr", resid.String()).Msg("attribute not set by theme")
			continue
		}
		if err != nil {
			return types.ThemeReport{}, err
		}
		if req.Follow {
			if value, err = e.Manager.ResolveReference(value); err != nil {
				return types.ThemeReport{}, err
			}
		}
		report.Attributes = append(report.Attributes, e.valueReport(resid, value))
	}
	return report, nil
}

func (e *Engine) Name(ctx context.Context, ref string) (types.ResourceName, error) {
	resid, err := e.ParseRef(ref, "")
	if err != nil {
		return types.ResourceName{}, err
	}
	return e.Manager.GetResourceName(resid)
}

func (e *Engine) ID(ctx context.Context, name, fallbackType string) (types.ResID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resource name is required")
	}
	return e.Manager.GetResourceID(name, fallbackType, e.DefaultPackage)
}

func (e *Engine) Configurations(excludeSystem, excludeMipmap bool) []string {
	configs := e.Manager.GetResourceConfigurations(excludeSystem, excludeMipmap)
	out := make([]string, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, cfg.String())
	}
	return out
}

func (e *Engine) Locales(excludeSystem, merge bool) []string {
	return e.Manager.GetResourceLocales(excludeSystem, merge)
}

// SetConfiguration switches the active configuration and returns the axes
// that changed.
func (e *Engine) SetConfiguration(raw string) (types.ConfigChange, error) {
	cfg, err := types.ParseQualifiers(raw)
	if err != nil {
		return 0, err
	}
	return e.Manager.SetConfiguration(cfg), nil
}

func (e *Engine) Sources() []types.SourceReport {
	sources := e.Manager.Sources()
	out := make([]types.SourceReport, 0, len(sources))
	for i, source := range sources {
		assert.NotEmpty(context.Background(), source.Path(), "loaded source must have a path")
		report := types.SourceReport{
			Cookie:          int32(i),
			Path:            source.Path(),
			System:          source.IsSystem(),
			ManifestPackage: source.ManifestPackage(),
		}
		for _, pkg := range source.Packages() {
			report.Packages = append(report.Packages, fmt.Sprintf("%s (0x%02x)", pkg.PackageName(), pkg.PackageID()))
		}
		out = append(out, report)
	}
	return out
}

func (e *Engine) valueReport(resid types.ResID, value types.ResolvedValue) types.ValueReport {
	report := types.ValueReport{
		ResID:         resid.String(),
		Name:          e.nameOf(resid),
		Configuration: e.Manager.Configuration().String(),
		Type:          value.Value.Type.String(),
		Data:          fmt.Sprintf("0x%08x", value.Value.Data),
		Display:       e.display(value.Cookie, value.Value),
		Cookie:        int32(value.Cookie),
		TypeSpecFlags: shared.FormatFlags(value.TypeSpecFlags),
	}
	if value.Cookie.IsValid() {
		report.SelectedConfig = value.Config.String()
		if sources := e.Manager.Sources(); int(value.Cookie) < len(sources) {
			report.Source = sources[value.Cookie].Path()
		}
	}
	if value.LastReference != 0 {
		report.LastReference = value.LastReference.String()
	}
	return report
}

func (e *Engine) nameOf(resid types.ResID) string {
	name, err := e.Manager.GetResourceName(resid)
	if err != nil {
		return ""
	}
	return name.String()
}

// display renders a value for humans. String values are read from the
// pool of the source that produced them.
func (e *Engine) display(cookie types.Cookie, value types.Value) string {
	if value.Type == types.DataTypeString {
		text, err := e.Manager.GetString(cookie, value.Data)
		if err != nil {
			log.Warn().Err(err).Int32("cookie", int32(cookie)).Msg("failed to read string value")
			return value.String()
		}
		return text
	}
	return value.String()
}

package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"resengine/internal/ports"
	"resengine/internal/shared"
	"resengine/internal/types"
)

// AssetManager resolves resources across an ordered list of sources for
// one active configuration. It owns the package groups, the configuration
// and the resolved bag cache. All methods are safe for concurrent use.
type AssetManager struct {
	mu         sync.RWMutex
	sources    []ports.Source
	groups     []*PackageGroup
	packageIDs [256]uint8
	config     types.Configuration
	bags       map[types.ResID]*types.ResolvedBag
}

// FindEntryResult is the entry selected for a resource id together with
// where it came from.
type FindEntryResult struct {
	Entry           types.TableEntry
	Config          types.Configuration
	TypeSpecFlags   uint32
	Cookie          types.Cookie
	PackageName     string
	TypeName        string
	EntryName       string
	DynamicRefTable *DynamicRefTable
}

func NewAssetManager() *AssetManager {
	am := &AssetManager{bags: map[types.ResID]*types.ResolvedBag{}}
	for i := range am.packageIDs {
		am.packageIDs[i] = unmappedGroup
	}
	return am
}

// SetSources replaces the loaded sources and rebuilds the package groups.
// Cached bags survive only when invalidateCaches is false.
func (am *AssetManager) SetSources(sources []ports.Source, invalidateCaches bool) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.sources = append([]ports.Source(nil), sources...)
	am.groups, am.packageIDs = buildPackageGroups(am.sources)
	if invalidateCaches {
		am.invalidateCachesLocked(types.ConfigAll)
	}
	log.Debug().
		Int("sources", len(am.sources)).
		Int("groups", len(am.groups)).
		Msg("asset manager sources set")
}

func (am *AssetManager) Sources() []ports.Source {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return append([]ports.Source(nil), am.sources...)
}

// SetConfiguration stores cfg and evicts the cached bags that depend on
// any axis that changed. It returns the changed axes.
func (am *AssetManager) SetConfiguration(cfg types.Configuration) types.ConfigChange {
	am.mu.Lock()
	defer am.mu.Unlock()
	diff := am.config.Diff(cfg)
	am.config = cfg
	if diff != 0 {
		am.invalidateCachesLocked(diff)
	}
	return diff
}

func (am *AssetManager) Configuration() types.Configuration {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.config
}

// InvalidateCaches evicts every cached bag whose type spec flags intersect
// diff. ConfigAll clears the cache.
func (am *AssetManager) InvalidateCaches(diff types.ConfigChange) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.invalidateCachesLocked(diff)
}

func (am *AssetManager) invalidateCachesLocked(diff types.ConfigChange) {
	if diff == types.ConfigAll {
		am.bags = map[types.ResID]*types.ResolvedBag{}
		log.Debug().Msg("bag cache cleared")
		return
	}
	evicted := 0
	for id, bag := range am.bags {
		if bag.TypeSpecFlags&uint32(diff) != 0 {
			delete(am.bags, id)
			evicted++
		}
	}
	log.Debug().
		Str("diff", shared.FormatFlags(uint32(diff))).
		Int("evicted", evicted).
		Msg("bag cache invalidated")
}

// CachedBagCount reports how many resolved bags are cached.
func (am *AssetManager) CachedBagCount() int {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return len(am.bags)
}

// GetResourceConfigurations returns every distinct configuration declared
// by the loaded packages, ordered by Configuration.Compare.
func (am *AssetManager) GetResourceConfigurations(excludeSystem, excludeMipmap bool) []types.Configuration {
	am.mu.RLock()
	defer am.mu.RUnlock()
	seen := map[types.Configuration]struct{}{}
	var out []types.Configuration
	am.forEachPackageLocked(excludeSystem, func(pkg ports.LoadedPackage) {
		for _, cfg := range pkg.Configurations(excludeMipmap) {
			if _, ok := seen[cfg]; ok {
				continue
			}
			seen[cfg] = struct{}{}
			out = append(out, cfg)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// GetResourceLocales returns the distinct locales of the loaded packages,
// sorted. With mergeEquivalentLangs, tags are canonicalized first so that
// equivalent spellings such as "iw" and "he" collapse.
func (am *AssetManager) GetResourceLocales(excludeSystem, mergeEquivalentLangs bool) []string {
	am.mu.RLock()
	defer am.mu.RUnlock()
	seen := map[string]struct{}{}
	am.forEachPackageLocked(excludeSystem, func(pkg ports.LoadedPackage) {
		for _, locale := range pkg.Locales() {
			if mergeEquivalentLangs {
				if tag, err := language.Parse(locale); err == nil {
					locale = tag.String()
				}
			}
			seen[locale] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for locale := range seen {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

func (am *AssetManager) forEachPackageLocked(excludeSystem bool, fn func(pkg ports.LoadedPackage)) {
	for _, group := range am.groups {
		for i, pkg := range group.Packages {
			if excludeSystem && am.sources[group.Cookies[i]].IsSystem() {
				continue
			}
			fn(pkg)
		}
	}
}

// FindEntry selects the best entry for resid across the packages of its
// group. A nonzero densityOverride replaces the density of the active
// configuration. With stopAtFirstMatch the first package holding the
// entry wins and the returned flags cover only that package.
func (am *AssetManager) FindEntry(resid types.ResID, densityOverride uint16, stopAtFirstMatch bool) (FindEntryResult, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.findEntryLocked(resid, densityOverride, stopAtFirstMatch)
}

func (am *AssetManager) findEntryLocked(resid types.ResID, densityOverride uint16, stopAtFirstMatch bool) (FindEntryResult, error) {
	if !resid.IsValid() {
		return FindEntryResult{}, notFound(fmt.Sprintf("invalid resource id %s", resid))
	}
	desired := am.config
	if densityOverride != 0 && densityOverride != am.config.Density {
		desired.Density = densityOverride
	}
	idx := am.packageIDs[resid.PackageID()]
	if idx == unmappedGroup {
		return FindEntryResult{}, notFound(fmt.Sprintf("no package loaded for resource id %s", resid))
	}
	group := am.groups[idx]

	var (
		result FindEntryResult
		found  bool
		flags  uint32
	)
	for i, pkg := range group.Packages {
		entry, ok, err := pkg.FindEntry(resid.TypeIndex(), resid.EntryID(), desired)
		if err != nil {
			return FindEntryResult{}, err
		}
		if !ok {
			continue
		}
		flags |= entry.TypeSpecFlags
		// Later packages in a group override earlier ones on equal configurations.
		if !found || entry.Config.IsBetterThan(result.Config, desired) || entry.Config == result.Config {
			found = true
			result = FindEntryResult{
				Entry:           entry.Entry,
				Config:          entry.Config,
				Cookie:          group.Cookies[i],
				PackageName:     pkg.PackageName(),
				TypeName:        entry.TypeName,
				EntryName:       entry.EntryName,
				DynamicRefTable: group.DynamicRefTable,
			}
			if stopAtFirstMatch {
				break
			}
		}
	}
	if !found {
		return FindEntryResult{}, notFound(fmt.Sprintf("resource %s not found", resid))
	}
	result.TypeSpecFlags = flags
	return result, nil
}

// GetResource returns the value of resid. Bags are only accepted when
// mayBeBag is set, and come back as a reference to resid itself.
func (am *AssetManager) GetResource(resid types.ResID, mayBeBag bool, densityOverride uint16) (types.ResolvedValue, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.getResourceLocked(resid, mayBeBag, densityOverride)
}

func (am *AssetManager) getResourceLocked(resid types.ResID, mayBeBag bool, densityOverride uint16) (types.ResolvedValue, error) {
	entry, err := am.findEntryLocked(resid, densityOverride, false)
	if err != nil {
		return types.ResolvedValue{}, err
	}
	out := types.ResolvedValue{
		Cookie:        entry.Cookie,
		Config:        entry.Config,
		TypeSpecFlags: entry.TypeSpecFlags,
	}
	if entry.Entry.IsComplex() {
		if !mayBeBag {
			log.Error().Str("resid", resid.String()).Msg("resource is a bag where a simple value was expected")
			return types.ResolvedValue{}, notFound(fmt.Sprintf("resource %s is a bag", resid))
		}
		out.Value = types.Value{Type: types.DataTypeReference, Data: uint32(resid)}
		return out, nil
	}
	value, err := entry.DynamicRefTable.LookupResourceValue(entry.Entry.Value)
	if err != nil {
		log.Warn().Err(err).Str("resid", resid.String()).Msg("failed to rewrite dynamic value")
	}
	out.Value = value
	return out, nil
}

// ResolveReference follows REFERENCE values until a non-reference value
// is reached. A reference that resolves to itself stops the walk without
// error. After maxChainIterations lookups the chain counts as exhausted.
// LastReference carries the last id followed in both cases, and the id
// that failed to resolve when a lookup errors.
func (am *AssetManager) ResolveReference(in types.ResolvedValue) (types.ResolvedValue, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.resolveReferenceLocked(in)
}

func (am *AssetManager) resolveReferenceLocked(in types.ResolvedValue) (types.ResolvedValue, error) {
	current := in
	for i := 0; i < maxChainIterations; i++ {
		if current.Value.Type != types.DataTypeReference || current.Value.Data == 0 {
			return current, nil
		}
		lastRef := types.ResID(current.Value.Data)
		next, err := am.getResourceLocked(lastRef, true, 0)
		if err != nil {
			return types.ResolvedValue{LastReference: lastRef}, err
		}
		next.TypeSpecFlags |= current.TypeSpecFlags
		next.LastReference = lastRef
		current = next
		if types.ResID(current.Value.Data) == lastRef && current.Value.Type == types.DataTypeReference {
			return current, nil
		}
	}
	if current.Value.Type != types.DataTypeReference || current.Value.Data == 0 {
		return current, nil
	}
	log.Warn().
		Str("start", types.ResID(in.Value.Data).String()).
		Str("last_reference", current.LastReference.String()).
		Msg("reference chain exhausted")
	return current, chainExhausted(fmt.Sprintf("reference %s still unresolved after %d lookups", current.LastReference, maxChainIterations))
}

// GetResourceName returns the package:type/entry name of resid.
func (am *AssetManager) GetResourceName(resid types.ResID) (types.ResourceName, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	entry, err := am.findEntryLocked(resid, 0, true)
	if err != nil {
		return types.ResourceName{}, err
	}
	return types.ResourceName{
		Package: entry.PackageName,
		Type:    entry.TypeName,
		Entry:   entry.EntryName,
	}, nil
}

// GetResourceID looks a resource up by "[package:][type/]entry". Missing
// parts fall back to fallbackType and fallbackPackage.
func (am *AssetManager) GetResourceID(name, fallbackType, fallbackPackage string) (types.ResID, error) {
	parsed, err := shared.ParseResourceName(name)
	if err != nil {
		return 0, err
	}
	if parsed.Package == "" {
		parsed.Package = fallbackPackage
	}
	if parsed.Type == "" {
		parsed.Type = fallbackType
	}

	am.mu.RLock()
	defer am.mu.RUnlock()
	for _, group := range am.groups {
		for _, pkg := range group.Packages {
			// Every package of a group shares one name.
			if parsed.Package != pkg.PackageName() {
				break
			}
			typeIndex, entryIndex, ok := pkg.FindEntryByName(parsed.Type, parsed.Entry)
			if !ok && parsed.Type == "attr" {
				typeIndex, entryIndex, ok = pkg.FindEntryByName("^attr-private", parsed.Entry)
			}
			if ok {
				return types.NewResID(group.DynamicRefTable.assignedPackageID, typeIndex+1, entryIndex), nil
			}
		}
	}
	return 0, notFound(fmt.Sprintf("resource %s not found", parsed))
}

// DynamicRefTableForPackageID returns the table of the group loaded under
// the runtime package id, or nil.
func (am *AssetManager) DynamicRefTableForPackageID(packageID uint8) *DynamicRefTable {
	am.mu.RLock()
	defer am.mu.RUnlock()
	idx := am.packageIDs[packageID]
	if idx == unmappedGroup {
		return nil
	}
	return am.groups[idx].DynamicRefTable
}

// DynamicRefTableForCookie returns the table of the group holding the
// package loaded from cookie, or nil.
func (am *AssetManager) DynamicRefTableForCookie(cookie types.Cookie) *DynamicRefTable {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.dynamicRefTableForCookieLocked(cookie)
}

func (am *AssetManager) dynamicRefTableForCookieLocked(cookie types.Cookie) *DynamicRefTable {
	for _, group := range am.groups {
		for _, c := range group.Cookies {
			if c == cookie {
				return group.DynamicRefTable
			}
		}
	}
	return nil
}

// GetString reads a STRING value's text from the source it came from.
func (am *AssetManager) GetString(cookie types.Cookie, index uint32) (string, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	if !cookie.IsValid() || int(cookie) >= len(am.sources) {
		return "", notFound(fmt.Sprintf("no source for cookie %d", cookie))
	}
	return am.sources[cookie].String(index)
}

// Open returns the named file under assets/, searching the last loaded
// source first.
func (am *AssetManager) Open(name string) ([]byte, types.Cookie, error) {
	return am.OpenNonAsset("assets/" + name)
}

// OpenNonAsset returns a named file from any source, searching the last
// loaded source first.
func (am *AssetManager) OpenNonAsset(name string) ([]byte, types.Cookie, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	for i := len(am.sources) - 1; i >= 0; i-- {
		if data, ok := am.sources[i].Open(name); ok {
			return data, types.Cookie(i), nil
		}
	}
	return nil, types.InvalidCookie, notFound(fmt.Sprintf("file %s not found", name))
}

// NewTheme creates an empty theme bound to this manager.
func (am *AssetManager) NewTheme() *Theme {
	return &Theme{manager: am}
}

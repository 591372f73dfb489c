package core

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"resengine/internal/types"
)

// GetBag returns the fully inherited bag of resid. Results are cached until
// a configuration change touches one of the axes the bag depends on.
func (am *AssetManager) GetBag(resid types.ResID) (*types.ResolvedBag, error) {
	am.mu.RLock()
	if bag, ok := am.bags[resid]; ok {
		am.mu.RUnlock()
		return bag, nil
	}
	am.mu.RUnlock()

	am.mu.Lock()
	defer am.mu.Unlock()
	if bag, ok := am.bags[resid]; ok {
		return bag, nil
	}
	return am.getBagLocked(resid, map[types.ResID]struct{}{})
}

// GetBagResIDs returns the keys of the bag in order.
func (am *AssetManager) GetBagResIDs(resid types.ResID) ([]types.ResID, error) {
	bag, err := am.GetBag(resid)
	if err != nil {
		return nil, err
	}
	out := make([]types.ResID, len(bag.Entries))
	for i, entry := range bag.Entries {
		out[i] = entry.Key
	}
	return out, nil
}

// getBagLocked builds and caches the bag of resid. visiting holds the bags
// on the current parent chain. Callers hold the write lock.
func (am *AssetManager) getBagLocked(resid types.ResID, visiting map[types.ResID]struct{}) (*types.ResolvedBag, error) {
	if bag, ok := am.bags[resid]; ok {
		return bag, nil
	}
	if _, ok := visiting[resid]; ok {
		return nil, corrupt(fmt.Sprintf("bag %s inherits from itself", resid))
	}
	visiting[resid] = struct{}{}
	defer delete(visiting, resid)

	found, err := am.findEntryLocked(resid, 0, false)
	if err != nil {
		return nil, err
	}
	entry := found.Entry
	if !entry.IsComplex() {
		return nil, notFound(fmt.Sprintf("resource %s is not a bag", resid))
	}
	if entry.HeaderSize < types.MapEntryHeaderSize {
		return nil, corrupt(fmt.Sprintf("bag %s has a %d byte header", resid, entry.HeaderSize))
	}
	refs := found.DynamicRefTable

	children := make([]types.BagEntry, 0, len(entry.Map))
	for _, item := range entry.Map {
		key := item.Name
		if !key.IsInternal() {
			key, err = refs.LookupResourceID(key)
			if err != nil {
				log.Error().Err(err).Str("bag", resid.String()).Str("key", item.Name.String()).Msg("failed to rewrite bag key")
				return nil, err
			}
		}
		value, err := refs.LookupResourceValue(item.Value)
		if err != nil {
			log.Error().Err(err).Str("bag", resid.String()).Str("key", key.String()).Msg("failed to rewrite bag value")
			return nil, err
		}
		children = append(children, types.BagEntry{Key: key, Value: value, Cookie: found.Cookie})
	}

	if entry.Parent == 0 {
		bag := &types.ResolvedBag{TypeSpecFlags: found.TypeSpecFlags, Entries: children}
		am.bags[resid] = bag
		return bag, nil
	}

	parentID, err := refs.LookupResourceID(entry.Parent)
	if err != nil {
		log.Error().Err(err).Str("bag", resid.String()).Str("parent", entry.Parent.String()).Msg("failed to rewrite bag parent")
		return nil, err
	}
	parent, err := am.getBagLocked(parentID, visiting)
	if err != nil {
		return nil, err
	}

	bag := &types.ResolvedBag{
		TypeSpecFlags: found.TypeSpecFlags | parent.TypeSpecFlags,
		Entries:       mergeBagEntries(children, parent.Entries),
	}
	am.bags[resid] = bag
	return bag, nil
}

// mergeBagEntries merges two key-sorted entry lists. On equal keys the
// child entry wins.
func mergeBagEntries(child, parent []types.BagEntry) []types.BagEntry {
	out := make([]types.BagEntry, 0, len(child)+len(parent))
	c, p := 0, 0
	for c < len(child) && p < len(parent) {
		childKey, parentKey := child[c].Key, parent[p].Key
		if childKey <= parentKey {
			out = append(out, child[c])
			c++
		} else {
			out = append(out, parent[p])
		}
		if childKey >= parentKey {
			p++
		}
	}
	out = append(out, child[c:]...)
	out = append(out, parent[p:]...)
	return out
}

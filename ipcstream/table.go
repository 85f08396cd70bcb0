// File: ipcstream/table.go
// Author: momentics <momentics@gmail.com>

package ipcstream

// AuthTable is the gid<->AppId binding table from spec.md §3. It is owned
// exclusively by the other process and accessed only from its event loop
// (spec.md §5), so no synchronization is needed.
type AuthTable struct {
	gid2appid map[uint64]string
	appid2gid map[string]uint64
}

// NewAuthTable returns an empty binding table.
func NewAuthTable() *AuthTable {
	return &AuthTable{
		gid2appid: make(map[uint64]string),
		appid2gid: make(map[string]uint64),
	}
}

// Bind records (gid, appID) as mutually authenticated iff neither key is
// already present. Returns false, leaving any existing binding untouched,
// if either side is already bound (spec.md §4.2, §8 "double-binding").
func (t *AuthTable) Bind(gid uint64, appID string) bool {
	if _, exists := t.appid2gid[appID]; exists {
		return false
	}
	if _, exists := t.gid2appid[gid]; exists {
		return false
	}
	t.appid2gid[appID] = gid
	t.gid2appid[gid] = appID
	return true
}

// Unbind removes the entry owned by gid, if any, along with its inverse.
func (t *AuthTable) Unbind(gid uint64) {
	appID, ok := t.gid2appid[gid]
	if !ok {
		return
	}
	delete(t.gid2appid, gid)
	delete(t.appid2gid, appID)
}

// LookupByGid returns the AppId bound to gid, if any.
func (t *AuthTable) LookupByGid(gid uint64) (string, bool) {
	v, ok := t.gid2appid[gid]
	return v, ok
}

// LookupByAppID returns the gid bound to appID, if any.
func (t *AuthTable) LookupByAppID(appID string) (uint64, bool) {
	v, ok := t.appid2gid[appID]
	return v, ok
}

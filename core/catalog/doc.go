// Package catalog maps logical asset keys to the objects that back them in
// the bundle store.
//
// The catalog is a single MySQL table (asset_catalog) consulted by the bundle
// provider before it touches storage. A key without a catalog row is resolved
// by convention: the key itself is the object name. The whole catalog is
// optional; when no database is configured the provider runs on convention
// alone.
//
// # Usage
//
//	db, err := catalog.Connect(cfg)
//	cat := catalog.New(db)
//	entry, err := cat.Lookup(ctx, "characters/enemy")
package catalog

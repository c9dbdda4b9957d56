package cache

import "strings"

// TagAll returns the tag covering every cached read of an entity kind,
// e.g. "invoice:all".
func TagAll(entity string) string {
	return strings.ToLower(entity) + ":all"
}

// TagEntity returns the tag for reads of a single entity, e.g. "invoice:<id>".
func TagEntity(entity, id string) string {
	return strings.ToLower(entity) + ":" + id
}

// TagRelation returns the tag for reads of an entity kind scoped to a parent,
// e.g. "job:customer:<id>".
func TagRelation(entity, parent, id string) string {
	return strings.ToLower(entity) + ":" + strings.ToLower(parent) + ":" + id
}

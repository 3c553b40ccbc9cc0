package search

import (
	"reflect"

	"github.com/yungbote/synthese-backend/internal/types"
)

// Mapping declares how one entity type is mirrored into the full-text
// index: the index name, the document id and the searchable field set.
type Mapping struct {
	Index    string
	ID       func(entity interface{}) string
	Document func(entity interface{}) map[string]interface{}
}

var registry = map[reflect.Type]Mapping{}

func Register(prototype interface{}, mapping Mapping) {
	registry[reflect.TypeOf(prototype)] = mapping
}

// Lookup returns the mapping for an entity, or ok=false when the entity
// type is not searchable.
func Lookup(entity interface{}) (Mapping, bool) {
	mapping, ok := registry[reflect.TypeOf(entity)]
	return mapping, ok
}

func init() {
	Register(&types.Article{}, Mapping{
		Index: "articles",
		ID: func(entity interface{}) string {
			return entity.(*types.Article).ID.String()
		},
		Document: func(entity interface{}) map[string]interface{} {
			article := entity.(*types.Article)
			return map[string]interface{}{
				"title":     article.Title,
				"synthesis": article.Synthesis,
			}
		},
	})
}

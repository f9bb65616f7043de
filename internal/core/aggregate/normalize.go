package aggregate

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/agenthands/boron/internal/core/model"
)

// Property keys that are lifted onto the node struct; everything else on a
// node record lands in Attributes.
var reservedNodeProps = map[string]bool{
	"uuid":       true,
	"name":       true,
	"summary":    true,
	"group_id":   true,
	"created_at": true,
}

// NodeFromRecord reshapes a raw `RETURN n` record into the canonical node
// form. Records that do not hold a node value are reported with ok=false.
func NodeFromRecord(rec *neo4j.Record, groupID string) (model.EntityNode, bool) {
	v, ok := rec.Get("n")
	if !ok {
		return model.EntityNode{}, false
	}
	node, ok := v.(dbtype.Node)
	if !ok {
		return model.EntityNode{}, false
	}

	props := node.Props
	uuid := AsString(props["uuid"])
	if uuid == "" {
		uuid = node.ElementId
	}

	name := AsString(props["name"])
	if name == "" {
		name = "Unknown"
	}

	attributes := make(map[string]interface{})
	for k, val := range props {
		if !reservedNodeProps[k] {
			attributes[k] = val
		}
	}

	labels := node.Labels
	if len(labels) == 0 {
		labels = []string{model.BaseLabel}
	}

	if groupID == "" {
		groupID = AsString(props["group_id"])
	}

	return model.EntityNode{
		UUID:       uuid,
		Name:       name,
		GroupID:    groupID,
		CreatedAt:  AsString(props["created_at"]),
		Summary:    AsString(props["summary"]),
		Labels:     labels,
		Attributes: attributes,
	}, true
}

// EdgeFromRecord reshapes a projected edge record (see GetGroupEdgesQuery)
// into the canonical edge form.
func EdgeFromRecord(rec *neo4j.Record, groupID string) model.EntityEdge {
	if groupID == "" {
		groupID = recString(rec, "group_id")
	}
	return model.EntityEdge{
		UUID:       recString(rec, "uuid"),
		SourceUUID: recString(rec, "source_uuid"),
		TargetUUID: recString(rec, "target_uuid"),
		GroupID:    groupID,
		Name:       recString(rec, "name"),
		Fact:       recString(rec, "fact"),
		CreatedAt:  recString(rec, "created_at"),
		ValidAt:    recOptString(rec, "valid_at"),
		ExpiredAt:  recOptString(rec, "expired_at"),
		Episodes:   recStrings(rec, "episodes"),
	}
}

func recString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	return AsString(v)
}

func recOptString(rec *neo4j.Record, key string) *string {
	v, _ := rec.Get(key)
	if v == nil {
		return nil
	}
	s := AsString(v)
	if s == "" {
		return nil
	}
	return &s
}

func recStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := AsString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AsString coerces the property encodings the driver hands back for
// timestamps and text. Anything else is treated as absent. It is shared with
// the facade layer, which reads the same projected record shapes.
func AsString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case dbtype.LocalDateTime:
		return t.Time().Format(time.RFC3339)
	default:
		return ""
	}
}

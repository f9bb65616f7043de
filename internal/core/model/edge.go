package model

// RelatesToType is the storage relationship tag. Every entity edge is stored
// under this generic marker; the meaningful relationship label lives in Name.
const RelatesToType = "RELATES_TO"

type EntityEdge struct {
	UUID       string   `json:"uuid"`
	SourceUUID string   `json:"source_node_uuid"`
	TargetUUID string   `json:"target_node_uuid"`
	GroupID    string   `json:"group_id"`
	Name       string   `json:"name"`
	Fact       string   `json:"fact"`
	CreatedAt  string   `json:"created_at"`
	ValidAt    *string  `json:"valid_at"`
	ExpiredAt  *string  `json:"expired_at"`
	Episodes   []string `json:"episodes"`
}

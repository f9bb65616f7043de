package driver

const (
	// Groups are a property partition, not separate databases: every node and
	// relationship carries a group_id tag.
	ListGroupsQuery = `
		MATCH (n)
		WHERE n.group_id IS NOT NULL AND n.group_id <> ""
		RETURN DISTINCT n.group_id AS group_id
		ORDER BY group_id
	`

	GetGroupNodesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		RETURN n
		LIMIT $limit
	`

	GetGroupEdgesQuery = `
		MATCH (s:Entity {group_id: $group_id})-[r:RELATES_TO]->(t:Entity)
		RETURN r.uuid AS uuid, s.uuid AS source_uuid, t.uuid AS target_uuid,
			r.name AS name, r.fact AS fact, r.created_at AS created_at,
			r.valid_at AS valid_at, r.expired_at AS expired_at,
			r.episodes AS episodes
		LIMIT $limit
	`

	GetNodeQuery = `
		MATCH (n:Entity {uuid: $uuid})
		RETURN n
		LIMIT 1
	`

	// SaveEntityNodeQuery carries a %s placeholder for the sanitized type
	// label; Cypher cannot parameterize labels.
	SaveEntityNodeQuery = `
		MERGE (n:Entity%s {uuid: $uuid})
		SET n.name = $name,
			n.group_id = $group_id,
			n.created_at = $created_at,
			n.summary = $summary,
			n += $attributes
		RETURN n.uuid AS uuid
	`

	DeleteNodeQuery = `
		MATCH (n:Entity {uuid: $uuid})
		WITH n, n.uuid AS uuid
		DETACH DELETE n
		RETURN uuid
	`

	GetEdgeQuery = `
		MATCH (s:Entity)-[r:RELATES_TO {uuid: $uuid}]->(t:Entity)
		RETURN r.uuid AS uuid, s.uuid AS source_uuid, t.uuid AS target_uuid,
			r.group_id AS group_id, r.name AS name, r.fact AS fact,
			r.created_at AS created_at,
			r.valid_at AS valid_at, r.expired_at AS expired_at,
			r.episodes AS episodes
		LIMIT 1
	`

	SaveEntityEdgeQuery = `
		MATCH (source:Entity {uuid: $source_uuid})
		MATCH (target:Entity {uuid: $target_uuid})
		MERGE (source)-[r:RELATES_TO {uuid: $uuid}]->(target)
		SET r.name = $name,
			r.fact = $fact,
			r.group_id = $group_id,
			r.created_at = $created_at,
			r.valid_at = $valid_at,
			r.expired_at = $expired_at,
			r.episodes = $episodes
		RETURN r.uuid AS uuid
	`

	DeleteEdgeQuery = `
		MATCH ()-[r:RELATES_TO {uuid: $uuid}]->()
		WITH r, r.uuid AS uuid
		DELETE r
		RETURN uuid
	`

	SaveEpisodicNodeQuery = `
		MERGE (n:Episodic {uuid: $uuid})
		SET n.name = $name,
			n.group_id = $group_id,
			n.created_at = $created_at,
			n.valid_at = $valid_at,
			n.content = $content,
			n.source = $source,
			n.source_description = $source_description
		RETURN n.uuid AS uuid
	`

	SaveEpisodicEdgeQuery = `
		MATCH (episode:Episodic {uuid: $source_uuid})
		MATCH (entity:Entity {uuid: $target_uuid})
		MERGE (episode)-[r:MENTIONS {uuid: $uuid}]->(entity)
		SET r.group_id = $group_id,
			r.created_at = $created_at
		RETURN r.uuid AS uuid
	`

	ListEpisodesQuery = `
		MATCH (e:Episodic {group_id: $group_id})
		RETURN e.uuid AS uuid, e.name AS name, e.group_id AS group_id,
			e.created_at AS created_at, e.valid_at AS valid_at,
			e.content AS content, e.source AS source,
			e.source_description AS source_description
		ORDER BY e.created_at DESC
		LIMIT $limit
	`

	GetEpisodeQuery = `
		MATCH (e:Episodic {uuid: $uuid})
		RETURN e.uuid AS uuid, e.name AS name, e.group_id AS group_id,
			e.created_at AS created_at, e.valid_at AS valid_at,
			e.content AS content, e.source AS source,
			e.source_description AS source_description
		LIMIT 1
	`

	DeleteEpisodeQuery = `
		MATCH (e:Episodic {uuid: $uuid})
		WITH e, e.uuid AS uuid
		DETACH DELETE e
		RETURN uuid
	`

	// Substring search stands in for semantic retrieval: the UI search boxes
	// need recall over names, summaries and facts, not ranked similarity.
	SearchNodesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		WHERE toLower(n.name) CONTAINS toLower($term)
			OR toLower(coalesce(n.summary, "")) CONTAINS toLower($term)
		RETURN n
		LIMIT $limit
	`

	SearchFactsQuery = `
		MATCH (s:Entity)-[r:RELATES_TO {group_id: $group_id}]->(t:Entity)
		WHERE toLower(coalesce(r.fact, "")) CONTAINS toLower($term)
		RETURN r.uuid AS uuid, s.uuid AS source_uuid, t.uuid AS target_uuid,
			r.group_id AS group_id, r.name AS name, r.fact AS fact,
			r.created_at AS created_at,
			r.valid_at AS valid_at, r.expired_at AS expired_at,
			r.episodes AS episodes
		LIMIT $limit
	`

	CountGroupNodesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		RETURN count(n) AS count
	`

	CountGroupEdgesQuery = `
		MATCH (:Entity {group_id: $group_id})-[r:RELATES_TO]->(:Entity)
		RETURN count(r) AS count
	`

	CountGroupEpisodesQuery = `
		MATCH (e:Episodic {group_id: $group_id})
		RETURN count(e) AS count
	`

	// Group rename runs as two independent re-tag steps. There is no
	// transaction spanning them; a failure between the steps leaves nodes
	// under the new name and relationships under the old one.
	RetagGroupNodesQuery = `
		MATCH (n {group_id: $old})
		SET n.group_id = $new
		RETURN count(n) AS count
	`

	RetagGroupEdgesQuery = `
		MATCH ()-[r {group_id: $old}]->()
		SET r.group_id = $new
		RETURN count(r) AS count
	`

	DeleteGroupQuery = `
		MATCH (n {group_id: $group_id})
		DETACH DELETE n
	`
)

package driver

// Cypher templates for document nodes. Labels cannot be parameterized, so
// each template takes the collection label via fmt.Sprintf; labels are
// restricted to the fixed collection set (see sanitizeLabel).
const (
	LoadDocumentQuery = `
		MATCH (d:%s {id: $id})
		RETURN d.data AS data
	`

	LoadManyDocumentsQuery = `
		MATCH (d:%s)
		WHERE d.id IN $ids
		RETURN d.id AS id, d.data AS data
	`

	ListDocumentsQuery = `
		MATCH (d:%s)
		RETURN d.data AS data
	`

	UpsertDocumentQuery = `
		MERGE (d:%s {id: $id})
		SET d.data = $data
	`

	DeleteDocumentQuery = `
		MATCH (d:%s {id: $id})
		DETACH DELETE d
	`
)

// Collections lists every logical collection the backend routes to.
var Collections = []string{
	"processes",
	"Files",
	"Conflicts",
	"Exceptions",
	"DuplicatedRecords",
}

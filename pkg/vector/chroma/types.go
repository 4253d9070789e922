package chroma

// chromaCollection represents a Chroma collection response.
type chromaCollection struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Configuration struct {
		HNSW *struct {
			Space string `json:"space"`
		} `json:"hnsw,omitempty"`
	} `json:"configuration_json"`
}

// space reports the collection's distance function. Chroma defaults to l2
// when neither the metadata nor the configuration names one.
func (c *chromaCollection) space() string {
	if s, ok := c.Metadata[hnswSpaceKey].(string); ok && s != "" {
		return s
	}
	if c.Configuration.HNSW != nil && c.Configuration.HNSW.Space != "" {
		return c.Configuration.HNSW.Space
	}
	return "l2"
}

// chromaCreateCollectionRequest is the request body for creating a collection.
type chromaCreateCollectionRequest struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// chromaUpsertRequest is the request body for upserting documents.
type chromaUpsertRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas,omitempty"`
}

// chromaQueryRequest is the request body for querying.
type chromaQueryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// chromaQueryResponse is the response from a query.
type chromaQueryResponse struct {
	IDs       [][]string  `json:"ids"`
	Distances [][]float32 `json:"distances"`
}

// chromaGetRequest is the request body for getting documents.
type chromaGetRequest struct {
	IDs     []string `json:"ids"`
	Include []string `json:"include"`
}

// chromaGetResponse is the response from getting documents.
type chromaGetResponse struct {
	IDs        []string    `json:"ids"`
	Embeddings [][]float32 `json:"embeddings"`
}

// chromaDeleteRequest is the request body for deleting documents.
type chromaDeleteRequest struct {
	IDs []string `json:"ids"`
}

package dto

type NodeOutput struct {
	ID        string
	ParentID  string
	Name      string
	Title     string
	IsParent  bool
	Open      bool
	MetaType  string
	Hostname  string
	IP        string
	Platform  string
	Protocols []string
	AppType   string
	AssetIP   string
}

type RowOutput struct {
	Node  NodeOutput
	Index int
	Depth int
	Last  bool
	Rails []bool
}

type ShowInput struct {
	Kind    string
	Keyword string
	Refresh bool
}

type TreeOutput struct {
	Kind    string
	Mode    string
	Keyword string
	Total   int
	Rows    []RowOutput
}

// Batch is a fetched descriptor list waiting to be installed on the event loop.
type Batch struct {
	Kind    string
	Refresh bool
	Nodes   []NodeOutput
}

type SearchRequest struct {
	Kind       string
	Keyword    string
	Generation uint64
}

type SearchResult struct {
	Request SearchRequest
	Nodes   []NodeOutput
}

type ExpandRequest struct {
	Kind  string
	Token uint64
	Key   string
}

type ChildrenResult struct {
	Request ExpandRequest
	Nodes   []NodeOutput
}

type GraftOutput struct {
	Applied bool
	Matches int
}

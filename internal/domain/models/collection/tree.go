package collection

// FolderNode is a folder with its descendants populated.
// Child folders and requests are each kept in their stored order.
type FolderNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ParentID *string       `json:"parent_id"`
	Position int           `json:"position"`
	Folders  []*FolderNode `json:"folders"`
	Requests []*Request    `json:"requests"`
}

// IsRoot reports whether the node is the project root.
func (n *FolderNode) IsRoot() bool {
	return n.ParentID == nil
}

// FindFolder returns the folder with the given id in the subtree, or nil.
func (n *FolderNode) FindFolder(id string) *FolderNode {
	if n.ID == id {
		return n
	}
	for _, child := range n.Folders {
		if found := child.FindFolder(id); found != nil {
			return found
		}
	}
	return nil
}

// FindRequest returns the request with the given id and the folder holding it.
func (n *FolderNode) FindRequest(id string) (*Request, *FolderNode) {
	for _, req := range n.Requests {
		if req.ID == id {
			return req, n
		}
	}
	for _, child := range n.Folders {
		if req, parent := child.FindRequest(id); req != nil {
			return req, parent
		}
	}
	return nil, nil
}

// Walk visits every folder of the subtree depth-first, parents before children.
func (n *FolderNode) Walk(fn func(*FolderNode)) {
	fn(n)
	for _, child := range n.Folders {
		child.Walk(fn)
	}
}

// CountRequests returns the number of requests in the subtree.
func (n *FolderNode) CountRequests() int {
	total := 0
	n.Walk(func(f *FolderNode) { total += len(f.Requests) })
	return total
}

// CountFolders returns the number of folders below n, excluding n itself.
func (n *FolderNode) CountFolders() int {
	total := 0
	n.Walk(func(*FolderNode) { total++ })
	return total - 1
}

// Clone deep-copies the subtree.
func (n *FolderNode) Clone() *FolderNode {
	c := &FolderNode{
		ID:       n.ID,
		Name:     n.Name,
		Position: n.Position,
		Folders:  make([]*FolderNode, 0, len(n.Folders)),
		Requests: make([]*Request, 0, len(n.Requests)),
	}
	if n.ParentID != nil {
		parent := *n.ParentID
		c.ParentID = &parent
	}
	for _, child := range n.Folders {
		c.Folders = append(c.Folders, child.Clone())
	}
	for _, req := range n.Requests {
		c.Requests = append(c.Requests, req.Clone())
	}
	return c
}

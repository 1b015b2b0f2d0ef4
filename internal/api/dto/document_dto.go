package dto

// DocumentUpdateRequest renames a document.
type DocumentUpdateRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}

// ListQuery is the zero-based pagination shared by every list endpoint.
type ListQuery struct {
	Page int `query:"page" validate:"gte=0"`
	Size int `query:"size" validate:"gte=0,lte=100"`
}

// DocumentListQuery adds owner and department filters to ListQuery.
type DocumentListQuery struct {
	Page         int   `query:"page" validate:"gte=0"`
	Size         int   `query:"size" validate:"gte=0,lte=100"`
	OwnerID      int64 `query:"ownerId" validate:"gte=0"`
	DepartmentID int64 `query:"departmentId" validate:"gte=0"`
}

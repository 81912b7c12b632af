// Package records translates between application-shaped records (camelCase
// field names) and store-shaped rows (snake_case columns), and layers a
// generic repository over the store client so each entity package only
// declares its table and field list.
package records

import "github.com/gcmn-library/backend/internal/store"

// Record is a single application-shaped record: field name to value.
type Record = map[string]any

// writeColumns is the full application-to-column mapping. Every multi-word
// field the system writes appears here once; single-word fields (email,
// status, phone, class, ...) are identical in both shapes and pass through.
var writeColumns = map[string]string{
	"userId":           "user_id",
	"fullName":         "full_name",
	"rollNumber":       "roll_number",
	"studentClass":     "student_class",
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"isSeen":           "is_seen",
	"bookId":           "book_id",
	"bookTitle":        "book_title",
	"borrowerName":     "borrower_name",
	"borrowerPhone":    "borrower_phone",
	"borrowerEmail":    "borrower_email",
	"borrowDate":       "borrow_date",
	"dueDate":          "due_date",
	"returnDate":       "return_date",
	"firstName":        "first_name",
	"lastName":         "last_name",
	"fatherName":       "father_name",
	"rollNo":           "roll_no",
	"addressStreet":    "address_street",
	"addressCity":      "address_city",
	"addressState":     "address_state",
	"addressZip":       "address_zip",
	"cardNumber":       "card_number",
	"studentId":        "student_id",
	"issueDate":        "issue_date",
	"validThrough":     "valid_through",
	"cardId":           "card_id",
	"bookName":         "book_name",
	"shortIntro":       "short_intro",
	"bookImage":        "book_image",
	"totalCopies":      "total_copies",
	"availableCopies":  "available_copies",
	"pdfPath":          "pdf_path",
	"coverImage":       "cover_image",
	"featuredImage":    "featured_image",
	"shortDescription": "short_description",
	"isPinned":         "is_pinned",
	"applicationId":    "application_id",
	"fromStatus":       "from_status",
	"toStatus":         "to_status",
}

// ColumnFor returns the store column for an application field. Unknown
// fields pass through unchanged.
func ColumnFor(field string) string {
	if col, ok := writeColumns[field]; ok {
		return col
	}
	return field
}

// ToStore converts an application record into a store row. The input is not
// modified.
func ToStore(rec Record) store.Row {
	row := make(store.Row, len(rec))
	for field, value := range rec {
		row[ColumnFor(field)] = value
	}
	return row
}

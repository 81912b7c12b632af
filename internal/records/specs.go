package records

import "github.com/gcmn-library/backend/internal/store"

// Spec declares how one entity reads and writes against the store. Fields
// are application names; the matching columns come from the projection
// table. HasUpdatedAt marks tables whose updates stamp updated_at.
type Spec struct {
	Table        string
	Fields       []string
	HasUpdatedAt bool
}

// Columns returns the store columns backing the declared fields, in order.
func (s Spec) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = ColumnFor(f)
	}
	return cols
}

// FromStore projects a store row back into an application record. Columns
// the entity does not declare are dropped.
func (s Spec) FromStore(row store.Row) Record {
	rec := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		if v, ok := row[ColumnFor(f)]; ok {
			rec[f] = v
		}
	}
	return rec
}

var (
	Users = Spec{
		Table:  "users",
		Fields: []string{"id", "email", "password", "createdAt"},
	}

	Profiles = Spec{
		Table: "profiles",
		Fields: []string{
			"id", "userId", "fullName", "phone", "rollNumber", "department",
			"studentClass", "createdAt", "updatedAt",
		},
		HasUpdatedAt: true,
	}

	UserRoles = Spec{
		Table:  "user_roles",
		Fields: []string{"id", "userId", "role", "createdAt"},
	}

	ContactMessages = Spec{
		Table:  "contact_messages",
		Fields: []string{"id", "name", "email", "subject", "message", "isSeen", "createdAt"},
	}

	BookBorrows = Spec{
		Table: "book_borrows",
		Fields: []string{
			"id", "userId", "bookId", "bookTitle", "borrowerName", "borrowerPhone",
			"borrowerEmail", "borrowDate", "dueDate", "returnDate", "status", "createdAt",
		},
	}

	LibraryCardApplications = Spec{
		Table: "library_card_applications",
		Fields: []string{
			"id", "userId", "firstName", "lastName", "fatherName", "dob", "class",
			"field", "rollNo", "email", "phone", "addressStreet", "addressCity",
			"addressState", "addressZip", "status", "cardNumber", "studentId",
			"issueDate", "validThrough", "password", "createdAt", "updatedAt",
		},
		HasUpdatedAt: true,
	}

	Donations = Spec{
		Table:  "donations",
		Fields: []string{"id", "amount", "method", "name", "email", "message", "createdAt"},
	}

	Students = Spec{
		Table:  "students",
		Fields: []string{"id", "userId", "cardId", "name", "class", "field", "rollNo", "createdAt"},
	}

	NonStudents = Spec{
		Table:  "non_students",
		Fields: []string{"id", "userId", "name", "role", "phone", "createdAt"},
	}

	Books = Spec{
		Table: "books",
		Fields: []string{
			"id", "bookName", "shortIntro", "description", "bookImage",
			"totalCopies", "availableCopies", "createdAt", "updatedAt",
		},
		HasUpdatedAt: true,
	}

	Notes = Spec{
		Table: "notes",
		Fields: []string{
			"id", "title", "description", "subject", "class", "pdfPath",
			"status", "createdAt", "updatedAt",
		},
		HasUpdatedAt: true,
	}

	RareBooks = Spec{
		Table: "rare_books",
		Fields: []string{
			"id", "title", "description", "category", "pdfPath", "coverImage",
			"status", "createdAt",
		},
	}

	Events = Spec{
		Table:        "events",
		Fields:       []string{"id", "title", "description", "images", "date", "createdAt", "updatedAt"},
		HasUpdatedAt: true,
	}

	Notifications = Spec{
		Table:  "notifications",
		Fields: []string{"id", "title", "message", "image", "pin", "status", "createdAt"},
	}

	BlogPosts = Spec{
		Table: "blog_posts",
		Fields: []string{
			"id", "title", "slug", "shortDescription", "content", "featuredImage",
			"isPinned", "status", "createdAt", "updatedAt",
		},
		HasUpdatedAt: true,
	}

	CardApplicationEvents = Spec{
		Table:  "card_application_events",
		Fields: []string{"id", "applicationId", "fromStatus", "toStatus", "createdAt"},
	}
)

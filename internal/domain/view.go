package domain

// TicketView is a ticket joined with the names shown next to it in listings.
type TicketView struct {
	Ticket
	CategoryName string  `db:"category_name"`
	LocationName string  `db:"location_name"`
	Building     string  `db:"building"`
	FilerName    string  `db:"filer_name"`
	FilerEmail   string  `db:"filer_email"`
	AssigneeName *string `db:"assignee_name"`
}

// CommentView is a comment with its author's name.
type CommentView struct {
	Comment
	AuthorName string `db:"author_name"`
}

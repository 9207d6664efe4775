package model

// BookingNotification is the flat payload published on the
// movie_ticket channel after a booking commits.  It contains enough
// information for downstream consumers to email the customer without
// querying the primary database.  ShowTime is RFC 3339 in UTC.
type BookingNotification struct {
	UserName       string `json:"user_name"`
	Email          string `json:"email"`
	TotalTickets   int    `json:"total_tickets"`
	TicketStatus   string `json:"ticket_status"`
	MovieName      string `json:"movie_name"`
	TheatreName    string `json:"theatre_name"`
	AuditoriumName string `json:"auditorium_name"`
	ShowTime       string `json:"show_time"`
}

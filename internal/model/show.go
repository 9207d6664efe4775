package model

import "time"

// Show is the read-only catalog view of a scheduled screening.  It is
// assembled from the shows, movies, auditoriums and theatres tables and
// carries only what a ticket and its notification need.
//
// Fields:
//  ID             – primary key of the show.
//  MovieName      – title of the movie being screened.
//  TheatreName    – name of the theatre hosting the auditorium.
//  AuditoriumName – name of the auditorium (screen) inside the theatre.
//  StartTime      – when the show begins (UTC).
type Show struct {
	ID             uint64    `json:"id"`              // shows.id
	MovieName      string    `json:"movie_name"`      // movies.name
	TheatreName    string    `json:"theatre_name"`    // theatres.name
	AuditoriumName string    `json:"auditorium_name"` // auditoriums.name
	StartTime      time.Time `json:"start_time"`      // shows.start_time
}

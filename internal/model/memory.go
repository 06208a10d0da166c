package model

import "time"

type Anniversary struct {
	ID    int64
	Title string
	Date  time.Time
}

type Moment struct {
	ID        int64
	Author    string
	Content   string
	Timestamp time.Time
}

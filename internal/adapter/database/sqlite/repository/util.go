package repository

import "strconv"

func itoa(id int) string {
	return strconv.Itoa(id)
}

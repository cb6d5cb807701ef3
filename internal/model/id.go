package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID attempts to interpret s as a generated document identifier
// (24 hex characters). It never panics; any malformed value yields ok=false,
// which callers must surface as a client error rather than a lookup miss.
func ParseObjectID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// Package docid bridges the two _id encodings the collections carry: plain
// strings written by the app and ObjectIDs written by driver defaults. Both
// surface in the domain as strings (ObjectIDs as hex).
package docid

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Match returns the _id condition for id. A valid hex id matches either the
// string or the ObjectID form.
func Match(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{id, oid}}
	}
	return id
}

// Filter returns a filter selecting the document with id.
func Filter(id string) bson.M {
	return bson.M{"_id": Match(id)}
}

// String returns the domain form of a raw _id value.
func String(v bson.RawValue) (string, error) {
	switch v.Type {
	case bsontype.String:
		return v.StringValue(), nil
	case bsontype.ObjectID:
		return v.ObjectID().Hex(), nil
	default:
		return "", fmt.Errorf("unsupported _id type %s", v.Type)
	}
}

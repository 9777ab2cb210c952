// internal/domain/models/user.go
package models

// User is a responder (or questioner) known to the directory.
//
// Users are owned by the client application; this service only reads them.
type User struct {
	ID          string `bson:"_id" json:"id"`
	DisplayName string `bson:"displayName,omitempty" json:"displayName,omitempty"`
	FCMToken    string `bson:"fcmToken,omitempty" json:"-"`
}

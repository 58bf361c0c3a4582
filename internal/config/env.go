package config

import (
	"errors"
	"fmt"
)

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("ENV %s is required", "JWT_SECRET"))
	}
	if c.MongoURI != "" && c.DBName == "" {
		errs = append(errs, fmt.Errorf("ENV %s is required with MONGO_URI", "DB_NAME"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ENV ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if (c.PubSubProjectID == "") != (c.PubSubTopic == "") {
		errs = append(errs, errors.New("ENV PUBSUB_PROJECT_ID and PUBSUB_TOPIC must be set together"))
	}
	return errors.Join(errs...)
}

// UseMongo reports whether a MongoDB deployment is configured.
func (c Config) UseMongo() bool {
	return c.MongoURI != ""
}

// UsePubSub reports whether lifecycle events go to Pub/Sub.
func (c Config) UsePubSub() bool {
	return c.PubSubProjectID != "" && c.PubSubTopic != ""
}

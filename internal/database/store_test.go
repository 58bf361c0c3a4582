package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

func TestMapErr(t *testing.T) {
	require.NoError(t, mapErr("find", nil))
	require.ErrorIs(t, mapErr("find", mongo.ErrNoDocuments), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	require.ErrorIs(t, mapErr("insert returns", dup), store.ErrDuplicate)

	cause := errors.New("socket closed")
	err := mapErr("insert orders", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "insert orders")
}

func TestConnectRejectsEmptyURI(t *testing.T) {
	_, err := Connect("", 0)
	require.Error(t, err)
}

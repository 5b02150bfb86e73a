package course_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/elimu/instructor-backend/internal/modules/course"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

func TestNewModule_Postgres(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	m := course.NewModule(database.Handles{Driver: database.DriverPostgres, Postgres: sqlx.NewDb(sqlDB, "sqlmock")}, nil, course.Options{})
	defer m.Shutdown()

	assert.NotNil(t, m.Service())
	assert.NotNil(t, m.HTTPHandler())
	assert.NotNil(t, m.StatsGateway())
}

func TestNewModule_MongoWithRedis(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run("wire", func(mt *mtest.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		defer client.Close()

		m := course.NewModule(database.Handles{Driver: database.DriverMongo, Mongo: mt.DB}, nil, course.Options{Redis: client, Channel: "test"})
		assert.NotNil(mt, m.Service())
		m.Shutdown()
	})
}

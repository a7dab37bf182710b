package viewcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/seungho-m/jikgwan/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	// Create a redis client connected to the miniredis server
	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	// Create the repository
	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		TTL:         30 * time.Second,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestPutAndGet() {
	gathering := &models.Gathering{
		ID:              9,
		MeetingPlace:    "Jamsil gate 3",
		MaxParticipants: 4,
	}

	err := s.repo.Put(context.Background(), &PutInput{
		Key:   GatheringDetailKey(9),
		Value: gathering,
	})
	s.Require().NoError(err)

	var got models.Gathering
	err = s.repo.Get(context.Background(), &GetInput{Key: GatheringDetailKey(9)}, &got)
	s.Require().NoError(err)
	s.Equal(int64(9), got.ID)
	s.Equal("Jamsil gate 3", got.MeetingPlace)
}

func (s *RedisRepositoryTestSuite) TestGetMiss() {
	var got models.Gathering
	err := s.repo.Get(context.Background(), &GetInput{Key: GatheringDetailKey(404)}, &got)
	s.Require().ErrorIs(err, ErrMiss)
}

func (s *RedisRepositoryTestSuite) TestExpiry() {
	err := s.repo.Put(context.Background(), &PutInput{
		Key:   ChatRoomsKey(),
		Value: []int{1, 2, 3},
	})
	s.Require().NoError(err)

	s.mr.FastForward(31 * time.Second)

	var got []int
	err = s.repo.Get(context.Background(), &GetInput{Key: ChatRoomsKey()}, &got)
	s.Require().ErrorIs(err, ErrMiss)
}

func (s *RedisRepositoryTestSuite) TestInvalidateSweepsPrefix() {
	for _, key := range []string{
		GatheringsListKey("", 0, 20),
		GatheringsListKey("LG", 0, 20),
		GatheringsListKey("LG", 1, 20),
	} {
		err := s.repo.Put(context.Background(), &PutInput{Key: key, Value: "cached"})
		s.Require().NoError(err)
	}
	err := s.repo.Put(context.Background(), &PutInput{Key: ChatRoomsKey(), Value: "cached"})
	s.Require().NoError(err)

	err = s.repo.Invalidate(context.Background(), &InvalidateInput{
		Prefixes: []string{GatheringsListPrefix()},
	})
	s.Require().NoError(err)

	var got string
	err = s.repo.Get(context.Background(), &GetInput{Key: GatheringsListKey("LG", 0, 20)}, &got)
	s.Require().ErrorIs(err, ErrMiss)

	// Unrelated views survive
	err = s.repo.Get(context.Background(), &GetInput{Key: ChatRoomsKey()}, &got)
	s.Require().NoError(err)
	s.Equal("cached", got)
}

func (s *RedisRepositoryTestSuite) TestConfirmFanOutKeys() {
	// The three views a participant confirmation must sweep
	keys := []string{
		GatheringsListKey("LG", 0, 20),
		GatheringDetailKey(9),
		MyParticipatingKey(),
	}
	for _, key := range keys {
		err := s.repo.Put(context.Background(), &PutInput{Key: key, Value: "cached"})
		s.Require().NoError(err)
	}

	err := s.repo.Invalidate(context.Background(), &InvalidateInput{
		Prefixes: []string{
			GatheringsListPrefix(),
			GatheringDetailKeyPrefix(9),
			MyParticipatingKey(),
		},
	})
	s.Require().NoError(err)

	for _, key := range keys {
		var got string
		err = s.repo.Get(context.Background(), &GetInput{Key: key}, &got)
		s.Require().ErrorIs(err, ErrMiss, key)
	}
}

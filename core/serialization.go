// Copyright 2025 The Chatflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written mus-format serializers for the stored types. Field order is
// part of the on-disk format and must not change. Timestamps are stored as
// Unix microseconds.

// IDMUS serializes IDs.
var IDMUS = idMUS{}

// ChatTurnMUS serializes ChatTurns.
var ChatTurnMUS = chatTurnMUS{}

// UserMUS serializes Users.
var UserMUS = userMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (s idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

type timeMUS struct{}

func (s timeMUS) Marshal(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (s timeMUS) Size(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

type chatTurnMUS struct{}

func (s chatTurnMUS) Marshal(v ChatTurn, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.UserID, bs[n:])
	n += ord.String.Marshal(v.SessionID, bs[n:])
	n += ord.String.Marshal(v.UserMessage, bs[n:])
	n += ord.String.Marshal(v.BotResponse, bs[n:])
	n += timeMUS{}.Marshal(v.Timestamp, bs[n:])
	n += timeMUS{}.Marshal(v.InsertedAt, bs[n:])
	return n
}

func (s chatTurnMUS) Unmarshal(bs []byte) (v ChatTurn, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.UserID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SessionID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.BotResponse, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chatTurnMUS) Size(v ChatTurn) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.UserID)
	size += ord.String.Size(v.SessionID)
	size += ord.String.Size(v.UserMessage)
	size += ord.String.Size(v.BotResponse)
	size += timeMUS{}.Size(v.Timestamp)
	size += timeMUS{}.Size(v.InsertedAt)
	return size
}

type userMUS struct{}

func (s userMUS) Marshal(v User, bs []byte) (n int) {
	n = ord.String.Marshal(v.Username, bs)
	n += ord.String.Marshal(v.PasswordHash, bs[n:])
	n += timeMUS{}.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (s userMUS) Unmarshal(bs []byte) (v User, n int, err error) {
	var n1 int
	v.Username, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.PasswordHash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	return
}

func (s userMUS) Size(v User) (size int) {
	size = ord.String.Size(v.Username)
	size += ord.String.Size(v.PasswordHash)
	size += timeMUS{}.Size(v.CreatedAt)
	return size
}

package lockmgr

import (
	"github.com/ValentinKolb/dSess/lib/store"
)

// All scripts operate on the keys of one record:
// KEYS[1] = lock (owner token), KEYS[2] = data (hash), KEYS[3] = lease (seconds).
// Replies of the lock scripts are {locked/acquired, token, HGETALL data, lease}.

// ARGV[1] = token, ARGV[2] = lock timeout. The lock always expires after the
// lock timeout, a stored lease only refreshes the data and lease keys.

var takeLockScript = store.NewScript("take-write-lock", `
local lockValue = redis.call('GET', KEYS[1])
local lease = redis.call('GET', KEYS[3])
local acquired = 0
if not lockValue then
	redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
	if not lease then
		lease = ARGV[2]
	end
	redis.call('SET', KEYS[3], lease, 'EX', lease)
	if redis.call('EXISTS', KEYS[2]) == 1 then
		redis.call('EXPIRE', KEYS[2], lease)
	end
	lockValue = ARGV[1]
	acquired = 1
elseif not lease then
	lease = '-1'
end
return {acquired, lockValue, redis.call('HGETALL', KEYS[2]), tonumber(lease)}
`)

var checkLockScript = store.NewScript("check-write-lock", `
local lockValue = redis.call('GET', KEYS[1])
local lease = redis.call('GET', KEYS[3])
local locked = 0
if lockValue then
	locked = 1
else
	lockValue = ''
end
if not lease then
	lease = '-1'
end
return {locked, lockValue, redis.call('HGETALL', KEYS[2]), tonumber(lease)}
`)

// ARGV[1] = token, ARGV[2] = lease
var releaseLockScript = store.NewScript("release-write-lock", `
if redis.call('GET', KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('SET', KEYS[3], ARGV[2], 'EX', ARGV[2])
if redis.call('EXISTS', KEYS[2]) == 1 then
	redis.call('EXPIRE', KEYS[2], ARGV[2])
end
return 1
`)

// ARGV[1] = token
var removeScript = store.NewScript("remove-and-release", `
if redis.call('GET', KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1], KEYS[2], KEYS[3])
return 1
`)

// ARGV[1] = token, ARGV[2] = lease, ARGV[3] = number of deleted keys,
// followed by the deleted keys and the field/value pairs to write
var updateScript = store.NewScript("update-and-release", `
if redis.call('GET', KEYS[1]) ~= ARGV[1] then
	return 0
end
local i = 4
for _ = 1, tonumber(ARGV[3]) do
	redis.call('HDEL', KEYS[2], ARGV[i])
	i = i + 1
end
while i < #ARGV do
	redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 1])
	i = i + 2
end
redis.call('DEL', KEYS[1])
redis.call('SET', KEYS[3], ARGV[2], 'EX', ARGV[2])
if redis.call('EXISTS', KEYS[2]) == 1 then
	redis.call('EXPIRE', KEYS[2], ARGV[2])
end
return 1
`)

// ARGV[1] = lease, followed by the field/value pairs of the payload
var setScript = store.NewScript("set-data", `
redis.call('DEL', KEYS[2])
local i = 2
while i < #ARGV do
	redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 1])
	i = i + 2
end
if redis.call('EXISTS', KEYS[2]) == 1 then
	redis.call('EXPIRE', KEYS[2], ARGV[1])
end
redis.call('SET', KEYS[3], ARGV[1], 'EX', ARGV[1])
return 1
`)

// ARGV[1] = lease
var expireScript = store.NewScript("update-expiry", `
redis.call('EXPIRE', KEYS[2], ARGV[1])
redis.call('EXPIRE', KEYS[3], ARGV[1])
return 1
`)

// Package redis shares validation dictionaries between services through a
// Redis hash.
//
// Every hash field is a locale and its value a JSON document with the
// dictionary sections "messages", "fields" and "names". DictionaryStore
// writes the hash, and its Adapter (an i18n.RedisAdapter) reads it back
// into an i18n.Dictionary:
//
//	client, err := redis.Connect(ctx, redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  time.Second,
//	    ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := redis.NewDictionaryStore(client, "")
//	err = store.Publish(ctx, map[string]map[string]any{
//	    "en": {"messages": map[string]any{"required": "{_field_} is required"}},
//	})
//
//	err = dict.Load(ctx, store.Adapter())
//
// Config can be populated from FIELDRULES_REDIS_* environment variables
// with github.com/caarlos0/env.
package redis

// Package notifier announces finished collection runs.
//
// A run summary (per-venue record counts, failures, whether the batch was saved) is
// formatted as a short status message. DryRunNotifier prints it; TwitterNotifier posts
// it using OAuth1 credentials read from the environment, and TelegramNotifier sends it
// to a chat through a bot.
package notifier

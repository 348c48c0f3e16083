// Package riot is a small client for the Riot Games Account, Match and League APIs.
package riot

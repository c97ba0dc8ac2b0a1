// Package githubauth locates the GitHub token handed to the gh CLI.
package githubauth

package leetcode

// GraphQL documents for the public LeetCode endpoint. Each is a single named
// query; the endpoint is called unauthenticated.

const profileQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      realName
      userAvatar
      ranking
      reputation
      countryName
    }
    submitStats {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

const contestRankingQuery = `
query getUserContestRanking($username: String!) {
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
    globalRanking
    topPercentage
  }
}`

const recentSubmissionsQuery = `
query getRecentSubmissions($username: String!, $limit: Int) {
  recentSubmissionList(username: $username, limit: $limit) {
    title
    titleSlug
    timestamp
    statusDisplay
    lang
  }
}`

const submissionCalendarQuery = `
query userProfileCalendar($username: String!, $year: Int) {
  matchedUser(username: $username) {
    userCalendar(year: $year) {
      submissionCalendar
    }
  }
}`

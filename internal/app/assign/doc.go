// Package assign decides who owns each question and keeps that decision
// consistent.
//
// Two activation paths share one conditional write:
//
//   - Assigner reacts to change-feed events: it assigns new questions at
//     random, reassigns declined ones, and routes answer notifications.
//   - Sweeper periodically assigns every question that is still unassigned,
//     round-robin over the responder pool, so lost events never strand a
//     question.
//
// Every write is a compare-and-swap on the assignee field; when the reactive
// path and a sweep race for the same question exactly one write lands and
// only its assignee is notified.
package assign

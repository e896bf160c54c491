package sqlinline

const QCreateJobRuns = `--sql 3d0c6a51-9b0e-4f57-a2c4-6c1e2b8f7d40
create table if not exists job_runs (
  id          uuid primary key,
  kind        text not null,
  queue_id    text not null,
  status      text not null,
  error       text not null default '',
  result      jsonb not null default '{}'::jsonb,
  started_at  timestamptz not null,
  finished_at timestamptz not null
);
create index if not exists job_runs_finished_at_idx on job_runs (finished_at desc);
`

const QInsertJobRun = `--sql 8e41f2b7-5c3a-4d69-9f0e-1b7a2c6d4e83
insert into job_runs(id, kind, queue_id, status, error, result, started_at, finished_at)
values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  coalesce($6::jsonb, '{}'::jsonb),
  $7::timestamptz,
  $8::timestamptz
);
`

const QListRecentJobRuns = `--sql b27d9c04-6e1f-4a83-8d55-0f3e7a9b1c62
select id, kind, queue_id, status, error, result, started_at, finished_at
from job_runs
order by finished_at desc
limit $1::int;
`

const QCountJobRunsByStatus = `--sql 5a9e3f18-2d7c-4b06-a4e1-c83f60d92b57
select status, count(*)::bigint
from job_runs
where finished_at >= $1::timestamptz
group by status;
`
